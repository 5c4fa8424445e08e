// Command migrate aplica las migraciones SQL con guarda de checksum.
//
// Uso:
//
//	migrate -dir migrations [-file 0003_credit_notes.sql]
//
// Códigos de salida: 0 ok (incluye no-op), 1 error, 2 violación de
// integridad (un archivo ya aplicado cambió de contenido).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/prepmood/internal/migrate"
)

func main() {
	var (
		dir  = flag.String("dir", "migrations", "directory with *.sql migrations")
		file = flag.String("file", "", "apply a single file from the directory")
	)
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "migrate: DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	files, err := migrate.LoadDir(os.DirFS("."), *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: load %s: %v\n", *dir, err)
		os.Exit(1)
	}
	if *file != "" {
		var one []migrate.File
		for _, f := range files {
			if f.Name == *file {
				one = append(one, f)
			}
		}
		if len(one) == 0 {
			fmt.Fprintf(os.Stderr, "migrate: %s not found in %s\n", *file, *dir)
			os.Exit(1)
		}
		files = one
	}
	if len(files) == 0 {
		fmt.Println("migrate: nothing to do")
		return
	}

	report, err := migrate.New(pool).Run(ctx, files)
	if report != nil {
		for _, name := range report.Skipped {
			fmt.Printf("skip  %s (already applied)\n", name)
		}
		for _, name := range report.Applied {
			fmt.Printf("apply %s\n", name)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		if errors.Is(err, migrate.ErrChecksumMismatch) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	fmt.Printf("migrate: %d applied, %d skipped\n", len(report.Applied), len(report.Skipped))
}
