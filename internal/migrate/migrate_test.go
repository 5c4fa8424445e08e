package migrate_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/dropDatabas3/prepmood/internal/migrate"
)

func TestChecksum_Deterministic(t *testing.T) {
	a := migrate.Checksum([]byte("CREATE TABLE x (id BIGINT);"))
	b := migrate.Checksum([]byte("CREATE TABLE x (id BIGINT);"))
	if a != b {
		t.Fatal("same content must hash equal")
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex (64 chars), got %d", len(a))
	}
	if c := migrate.Checksum([]byte("CREATE TABLE x (id BIGINT); -- touched")); c == a {
		t.Fatal("different content must hash different")
	}
}

func TestLoadDir_SortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_orders.sql":  {Data: []byte("-- orders")},
		"migrations/0001_core.sql":    {Data: []byte("-- core")},
		"migrations/0010_late.sql":    {Data: []byte("-- late")},
		"migrations/README.md":        {Data: []byte("not sql")},
		"migrations/notes/backup.sql": {Data: []byte("nested, ignored")},
	}

	files, err := migrate.LoadDir(fsys, "migrations")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"0001_core.sql", "0002_orders.sql", "0010_late.sql"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("files[%d] = %s, want %s", i, files[i].Name, name)
		}
		if files[i].Checksum != migrate.Checksum(files[i].SQL) {
			t.Errorf("files[%d] checksum not derived from content", i)
		}
	}
}

func TestLoadDir_MissingDir(t *testing.T) {
	if _, err := migrate.LoadDir(fstest.MapFS{}, "nope"); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestPlan(t *testing.T) {
	mkFile := func(name, sql string) migrate.File {
		data := []byte(sql)
		return migrate.File{Name: name, SQL: data, Checksum: migrate.Checksum(data)}
	}
	core := mkFile("0001_core.sql", "-- core")
	orders := mkFile("0002_orders.sql", "-- orders")
	late := mkFile("0003_late.sql", "-- late")

	names := func(files []migrate.File) []string {
		var out []string
		for _, f := range files {
			out = append(out, f.Name)
		}
		return out
	}

	t.Run("no prior rows means everything pending", func(t *testing.T) {
		pending, skipped, err := migrate.Plan([]migrate.File{core, orders}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(skipped) != 0 || len(pending) != 2 {
			t.Fatalf("expected 2 pending, 0 skipped; got %v / %v", names(pending), skipped)
		}
	})

	t.Run("applied with same checksum is skipped", func(t *testing.T) {
		prior := map[string]migrate.Attempt{
			core.Name: {Checksum: core.Checksum, Success: true},
		}
		pending, skipped, err := migrate.Plan([]migrate.File{core, orders}, prior)
		if err != nil {
			t.Fatal(err)
		}
		if len(skipped) != 1 || skipped[0] != core.Name {
			t.Fatalf("expected %s skipped, got %v", core.Name, skipped)
		}
		if len(pending) != 1 || pending[0].Name != orders.Name {
			t.Fatalf("expected %s pending, got %v", orders.Name, names(pending))
		}
	})

	t.Run("failed attempt is retried", func(t *testing.T) {
		prior := map[string]migrate.Attempt{
			core.Name: {Checksum: core.Checksum, Success: false},
		}
		pending, _, err := migrate.Plan([]migrate.File{core}, prior)
		if err != nil {
			t.Fatal(err)
		}
		if len(pending) != 1 || pending[0].Name != core.Name {
			t.Fatalf("expected a retry of %s, got %v", core.Name, names(pending))
		}
	})

	t.Run("changed checksum after success aborts the whole plan", func(t *testing.T) {
		prior := map[string]migrate.Attempt{
			core.Name:   {Checksum: core.Checksum, Success: true},
			orders.Name: {Checksum: "0000", Success: true}, // archivo editado después de aplicarse
		}
		pending, skipped, err := migrate.Plan([]migrate.File{core, orders, late}, prior)
		if !errors.Is(err, migrate.ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
		if pending != nil || skipped != nil {
			t.Fatalf("a mismatch must leave nothing to apply: %v / %v", names(pending), skipped)
		}
	})
}
