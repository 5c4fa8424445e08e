// Package migrate implementa el runner de migraciones con guarda de
// checksum: un archivo ya aplicado con éxito solo puede re-aplicarse si
// su contenido no cambió.
package migrate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrChecksumMismatch indica que un archivo ya aplicado con éxito cambió
// de contenido. El runner no aplica NADA en ese caso; el caller debe
// salir con código 2.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// File es una migración cargada en memoria.
type File struct {
	Name     string
	SQL      []byte
	Checksum string // sha256 hex del contenido
}

// Report resume una corrida del runner.
type Report struct {
	Applied []string
	Skipped []string // ya aplicadas con el mismo checksum
}

// Runner aplica migraciones sobre un pool de PostgreSQL.
type Runner struct {
	pool *pgxpool.Pool
}

// New crea un runner.
func New(pool *pgxpool.Pool) *Runner { return &Runner{pool: pool} }

// Checksum calcula el sha256 hex de un contenido.
func Checksum(sql []byte) string {
	sum := sha256.Sum256(sql)
	return hex.EncodeToString(sum[:])
}

// LoadDir lee los *.sql de un fs.FS en orden ascendente por nombre.
func LoadDir(fsys fs.FS, dir string) ([]File, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: e.Name(), SQL: data, Checksum: Checksum(data)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// EnsureTable crea schema_migrations si no existe. UNIQUE(filename): la
// fila es el registro autoritativo del último intento por archivo.
func (r *Runner) EnsureTable(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename    TEXT NOT NULL UNIQUE,
			checksum    TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			success     BOOLEAN NOT NULL,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT ''
		)`)
	return err
}

// Attempt es el último intento registrado en schema_migrations para un
// archivo.
type Attempt struct {
	Checksum string
	Success  bool
}

func (r *Runner) lookup(ctx context.Context, filename string) (*Attempt, error) {
	var rec Attempt
	err := r.pool.QueryRow(ctx,
		`SELECT checksum, success FROM schema_migrations WHERE filename = $1`,
		filename,
	).Scan(&rec.Checksum, &rec.Success)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Plan clasifica los archivos contra lo ya registrado: sin fila previa o
// con intento fallido quedan pendientes, aplicado con éxito y mismo
// checksum se saltea, y aplicado con éxito pero checksum distinto aborta
// el plan entero con ErrChecksumMismatch: no se aplica NADA.
func Plan(files []File, prior map[string]Attempt) (pending []File, skipped []string, err error) {
	for _, f := range files {
		rec, ok := prior[f.Name]
		switch {
		case !ok:
			pending = append(pending, f)
		case rec.Success && rec.Checksum == f.Checksum:
			skipped = append(skipped, f.Name)
		case rec.Success:
			return nil, nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, f.Name)
		default:
			// Intento previo fallido: se puede reintentar.
			pending = append(pending, f)
		}
	}
	return pending, skipped, nil
}

// Run aplica las migraciones pendientes según Plan.
func (r *Runner) Run(ctx context.Context, files []File) (*Report, error) {
	if err := r.EnsureTable(ctx); err != nil {
		return nil, err
	}

	prior := make(map[string]Attempt, len(files))
	for _, f := range files {
		rec, err := r.lookup(ctx, f.Name)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			prior[f.Name] = *rec
		}
	}
	pending, skipped, err := Plan(files, prior)
	if err != nil {
		return nil, err
	}

	report := &Report{Skipped: skipped}
	for _, f := range pending {
		if err := r.apply(ctx, f); err != nil {
			return report, err
		}
		report.Applied = append(report.Applied, f.Name)
	}
	return report, nil
}

// apply ejecuta el SQL en una transacción y registra el intento, exitoso
// o no, en schema_migrations.
func (r *Runner) apply(ctx context.Context, f File) error {
	start := time.Now()
	execErr := func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)
		if _, err := tx.Exec(ctx, string(f.SQL)); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}()
	durationMs := time.Since(start).Milliseconds()

	errText := ""
	if execErr != nil {
		errText = execErr.Error()
	}
	if recErr := r.record(ctx, f, execErr == nil, durationMs, errText); recErr != nil {
		if execErr != nil {
			return execErr
		}
		return recErr
	}
	return execErr
}

func (r *Runner) record(ctx context.Context, f File, success bool, durationMs int64, errText string) error {
	// La fila por archivo refleja el último intento: primero UPDATE del
	// reintento, si no había fila, INSERT.
	tag, err := r.pool.Exec(ctx, `
		UPDATE schema_migrations
		SET checksum = $2, applied_at = NOW(), success = $3, duration_ms = $4, error = $5
		WHERE filename = $1`,
		f.Name, f.Checksum, success, durationMs, errText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO schema_migrations (filename, checksum, applied_at, success, duration_ms, error)
		VALUES ($1, $2, NOW(), $3, $4, $5)`,
		f.Name, f.Checksum, success, durationMs, errText)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	// Carrera con otro runner: la fila que ganó el INSERT es la autoritativa.
	rec, lookErr := r.lookup(ctx, f.Name)
	if lookErr != nil {
		return lookErr
	}
	if rec != nil && rec.Success && rec.Checksum == f.Checksum {
		return nil
	}
	return fmt.Errorf("%w: %s (concurrent run)", ErrChecksumMismatch, f.Name)
}

// isUniqueViolation detecta el SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
