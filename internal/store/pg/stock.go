package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

type stockRepo struct {
	pool *pgxpool.Pool
}

const stockCols = `
	id, product_id, product_option_id, token, status, location, note,
	created_at, updated_at`

func scanStockUnit(row pgx.Row) (*repository.StockUnit, error) {
	var s repository.StockUnit
	err := row.Scan(&s.ID, &s.ProductID, &s.ProductOptionID, &s.Token,
		&s.Status, &s.Location, &s.Note, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) List(ctx context.Context, filter repository.StockListFilter) ([]repository.StockUnit, int, error) {
	limit := clampLimit(filter.Limit, 50, 200)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"TRUE"}
	args := []any{}
	if filter.ProductID > 0 {
		args = append(args, filter.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_units WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT` + stockCols + ` FROM stock_units WHERE ` + cond +
		` ORDER BY id LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []repository.StockUnit
	for rows.Next() {
		s, err := scanStockUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *stockRepo) Stats(ctx context.Context) (*repository.StockStats, error) {
	var st repository.StockStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM stock_units`,
		string(types.StockInStock), string(types.StockReserved), string(types.StockSold),
	).Scan(&st.Total, &st.InStock, &st.Reserved, &st.Sold)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *stockRepo) Create(ctx context.Context, input repository.CreateStockInput) ([]repository.StockUnit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tokens := input.Tokens
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	var out []repository.StockUnit
	for _, tok := range tokens {
		query := `
			INSERT INTO stock_units (product_id, product_option_id, token, status, location, note)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING` + stockCols
		s, err := scanStockUnit(tx.QueryRow(ctx, query,
			input.ProductID, input.ProductOptionID, nullIfEmpty(tok),
			string(types.StockInStock), input.Location, input.Note))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, repository.ErrConflict
			}
			return nil, err
		}
		out = append(out, *s)
	}
	return out, tx.Commit(ctx)
}

func (r *stockRepo) Correct(ctx context.Context, unitID int64, newStatus types.StockStatus, reason string, adminUserID int64) (*repository.StockUnit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lockQ := `SELECT` + stockCols + ` FROM stock_units WHERE id = $1 FOR UPDATE`
	current, err := scanStockUnit(tx.QueryRow(ctx, lockQ, unitID))
	if err != nil {
		return nil, err
	}
	if current.Status == newStatus {
		return nil, repository.ErrStaleState
	}

	updQ := `UPDATE stock_units SET status = $1, updated_at = NOW()
		 WHERE id = $2 RETURNING` + stockCols
	updated, err := scanStockUnit(tx.QueryRow(ctx, updQ, string(newStatus), unitID))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_corrections (stock_unit_id, old_status, new_status, reason, admin_user_id)
		VALUES ($1, $2, $3, $4, $5)`,
		unitID, string(current.Status), string(newStatus), reason, adminUserID); err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}
