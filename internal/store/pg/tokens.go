package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
)

type tokenRepo struct {
	pool *pgxpool.Pool
}

const tokenCols = `
	token_pk, token, product_name, internal_code, owner_user_id, is_blocked,
	scan_count, first_scanned_at, last_scanned_at, created_at, updated_at`

func scanToken(row pgx.Row) (*repository.TokenMaster, error) {
	var t repository.TokenMaster
	err := row.Scan(
		&t.TokenPK, &t.Token, &t.ProductName, &t.InternalCode, &t.OwnerUserID,
		&t.IsBlocked, &t.ScanCount, &t.FirstScannedAt, &t.LastScannedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) Create(ctx context.Context, input repository.CreateTokenInput) (*repository.TokenMaster, error) {
	query := `
		INSERT INTO token_master (token, product_name, internal_code)
		VALUES ($1, $2, $3)
		RETURNING` + tokenCols
	t, err := scanToken(r.pool.QueryRow(ctx, query,
		input.Token, input.ProductName, input.InternalCode))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return t, nil
}

func (r *tokenRepo) GetByPK(ctx context.Context, pk int64) (*repository.TokenMaster, error) {
	query := `SELECT` + tokenCols + ` FROM token_master WHERE token_pk = $1`
	return scanToken(r.pool.QueryRow(ctx, query, pk))
}

func (r *tokenRepo) GetByToken(ctx context.Context, token string) (*repository.TokenMaster, error) {
	query := `SELECT` + tokenCols + ` FROM token_master WHERE token = $1`
	return scanToken(r.pool.QueryRow(ctx, query, token))
}

func (r *tokenRepo) Patch(ctx context.Context, pk int64, patch repository.TokenPatch) (*repository.TokenMaster, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, strings.Replace(expr, "?", "$"+itoa(len(args)), 1))
	}
	if patch.IsBlocked != nil {
		add("is_blocked = ?", *patch.IsBlocked)
	}
	switch {
	case patch.ClearOwner:
		sets = append(sets, "owner_user_id = NULL")
	case patch.OwnerUserID != nil:
		add("owner_user_id = ?", *patch.OwnerUserID)
	}
	if patch.ProductName != nil {
		add("product_name = ?", *patch.ProductName)
	}
	args = append(args, pk)

	query := `UPDATE token_master SET ` + strings.Join(sets, ", ") +
		` WHERE token_pk = $` + itoa(len(args)) + ` RETURNING` + tokenCols
	return scanToken(r.pool.QueryRow(ctx, query, args...))
}

func (r *tokenRepo) Search(ctx context.Context, term string, limit int) ([]repository.TokenSearchRow, error) {
	limit = clampLimit(limit, 50, 50)
	pattern := "%" + strings.TrimSpace(term) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT tm.token, tm.product_name, tm.internal_code, tm.is_blocked,
		       tm.scan_count, w.id, w.status, u.email, tm.created_at
		FROM token_master tm
		LEFT JOIN warranties w ON w.token = tm.token AND w.deleted_at IS NULL
		LEFT JOIN users u ON u.id = tm.owner_user_id
		WHERE tm.token ILIKE $1
		   OR tm.product_name ILIKE $1
		   OR tm.internal_code ILIKE $1
		   OR u.email ILIKE $1
		ORDER BY tm.created_at DESC
		LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.TokenSearchRow
	for rows.Next() {
		var row repository.TokenSearchRow
		if err := rows.Scan(
			&row.Token, &row.ProductName, &row.InternalCode, &row.IsBlocked,
			&row.ScanCount, &row.WarrantyID, &row.WarrantyStatus,
			&row.OwnerEmail, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *tokenRepo) RecordScan(ctx context.Context, token, ip, userAgent string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE token_master
		SET scan_count = scan_count + 1,
		    first_scanned_at = COALESCE(first_scanned_at, NOW()),
		    last_scanned_at = NOW(),
		    updated_at = NOW()
		WHERE token = $1`,
		token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO scan_logs (token, ip, user_agent) VALUES ($1, $2, $3)`,
		token, ip, userAgent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *tokenRepo) ListScans(ctx context.Context, token string, limit int) ([]repository.ScanLog, error) {
	limit = clampLimit(limit, 20, 100)
	rows, err := r.pool.Query(ctx, `
		SELECT id, token, ip, user_agent, scanned_at
		FROM scan_logs
		WHERE token = $1
		ORDER BY scanned_at DESC
		LIMIT $2`,
		token, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ScanLog
	for rows.Next() {
		var s repository.ScanLog
		if err := rows.Scan(&s.ID, &s.Token, &s.IP, &s.UserAgent, &s.ScannedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
