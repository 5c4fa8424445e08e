package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withConfirmInput redirige la respuesta del prompt durante un test.
func withConfirmInput(t *testing.T, answer string) {
	t.Helper()
	prev := confirmInput
	confirmInput = strings.NewReader(answer)
	t.Cleanup(func() { confirmInput = prev })
}

func TestConfirm(t *testing.T) {
	t.Run("--yes skips the prompt", func(t *testing.T) {
		withConfirmInput(t, "") // no debería leerse
		if !confirm(&rootFlags{yes: true}, "proceed?") {
			t.Fatal("--yes must confirm without reading stdin")
		}
	})

	cases := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false}, // EOF directo
	}
	for _, tc := range cases {
		withConfirmInput(t, tc.answer)
		if got := confirm(&rootFlags{}, "proceed?"); got != tc.want {
			t.Errorf("confirm(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func writeBatchFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.csv")
	data := "token,from_email,to_email\nPM-AAA,a@x.com,b@x.com\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// El lote pide una única confirmación antes de conectarse a la base:
// un operador que contesta que no tiene que salir sin escribir nada.
func TestTransferBatch_DeclinedConfirmationAborts(t *testing.T) {
	cmd := newTransferBatchCmd(&rootFlags{})
	if err := cmd.Flags().Set("file", writeBatchFile(t)); err != nil {
		t.Fatal(err)
	}

	withConfirmInput(t, "n\n")
	err := cmd.RunE(cmd, nil)
	if err == nil || err.Error() != "aborted" {
		t.Fatalf("expected aborted, got %v", err)
	}
}

func TestTransferBatch_DryRunWritesNothing(t *testing.T) {
	cmd := newTransferBatchCmd(&rootFlags{dryRun: true})
	if err := cmd.Flags().Set("file", writeBatchFile(t)); err != nil {
		t.Fatal(err)
	}

	// Sin DSN ni base: si el dry-run intentara conectarse, fallaría acá.
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("dry-run must not touch the database: %v", err)
	}
}

func TestEffectiveReason(t *testing.T) {
	if got := effectiveReason(""); got != defaultTransferReason {
		t.Fatalf("empty reason should fall back to the default, got %q", got)
	}
	if got := effectiveReason("  chargeback dispute 4411  "); got != "chargeback dispute 4411" {
		t.Fatalf("operator reason should be trimmed and kept, got %q", got)
	}
}

func TestParseBatchCSV(t *testing.T) {
	t.Run("happy path with CRLF", func(t *testing.T) {
		data := "token,from_email,to_email\r\nPM-AAA, a@x.com ,b@x.com\r\nPM-BBB,c@x.com,d@x.com\r\n"
		rows, bad, err := parseBatchCSV(data)
		if err != nil {
			t.Fatal(err)
		}
		if len(bad) != 0 {
			t.Fatalf("unexpected bad rows: %v", bad)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].token != "PM-AAA" || rows[0].from != "a@x.com" || rows[0].to != "b@x.com" {
			t.Fatalf("row not trimmed/parsed: %+v", rows[0])
		}
		if rows[0].line != 2 || rows[1].line != 3 {
			t.Fatalf("line numbers wrong: %d, %d", rows[0].line, rows[1].line)
		}
	})

	t.Run("bad rows are reported and skipped", func(t *testing.T) {
		data := "token,from,to\nPM-AAA,a@x.com\nPM-BBB,b@x.com,c@x.com,extra\n,x@x.com,y@x.com\nPM-CCC,d@x.com,e@x.com\n"
		rows, bad, err := parseBatchCSV(data)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 1 || rows[0].token != "PM-CCC" {
			t.Fatalf("expected only PM-CCC to survive, got %+v", rows)
		}
		if len(bad) != 3 {
			t.Fatalf("expected 3 reported rows, got %v", bad)
		}
	})

	t.Run("header only is an error", func(t *testing.T) {
		if _, _, err := parseBatchCSV("token,from,to\n"); err == nil {
			t.Fatal("expected an error for a file without data rows")
		}
	})

	t.Run("empty file is an error", func(t *testing.T) {
		if _, _, err := parseBatchCSV(""); err == nil {
			t.Fatal("expected an error for an empty file")
		}
	})
}

func TestCheckTransferable(t *testing.T) {
	owner := int64(7)
	other := int64(8)

	base := func() *tokenInfo {
		return &tokenInfo{
			Token:            "PM-AAA",
			OwnerUserID:      &owner,
			WarrantyID:       1,
			WarrantyPublicID: "11111111-1111-1111-1111-111111111111",
			WarrantyStatus:   "active",
			WarrantyOwnerID:  &owner,
		}
	}

	if err := checkTransferable(base(), owner); err != nil {
		t.Fatalf("healthy token should be transferable: %v", err)
	}

	t.Run("no warranty", func(t *testing.T) {
		info := base()
		info.WarrantyID = 0
		if err := checkTransferable(info, owner); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("revoked", func(t *testing.T) {
		info := base()
		info.WarrantyStatus = "revoked"
		if err := checkTransferable(info, owner); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("blocked token", func(t *testing.T) {
		info := base()
		info.IsBlocked = true
		if err := checkTransferable(info, owner); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("wrong from user is an integrity error", func(t *testing.T) {
		err := checkTransferable(base(), other)
		if !errors.Is(err, errIntegrity) {
			t.Fatalf("expected errIntegrity, got %v", err)
		}
	})

	t.Run("owner drift between tables is an integrity error", func(t *testing.T) {
		info := base()
		info.OwnerUserID = &other // token_master disiente de warranties
		err := checkTransferable(info, owner)
		if !errors.Is(err, errIntegrity) {
			t.Fatalf("expected errIntegrity, got %v", err)
		}
	})
}
