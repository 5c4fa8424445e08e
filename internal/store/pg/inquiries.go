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

type inquiryRepo struct {
	pool *pgxpool.Pool
}

const inquiryCols = `
	id, name, email, subject, message, status, admin_memo, user_id,
	created_at, updated_at`

func scanInquiry(row pgx.Row) (*repository.Inquiry, error) {
	var q repository.Inquiry
	err := row.Scan(&q.ID, &q.Name, &q.Email, &q.Subject, &q.Message,
		&q.Status, &q.AdminMemo, &q.UserID, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *inquiryRepo) Create(ctx context.Context, input repository.CreateInquiryInput) (*repository.Inquiry, error) {
	query := `
		INSERT INTO inquiries (name, email, subject, message, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + inquiryCols
	return scanInquiry(r.pool.QueryRow(ctx, query,
		input.Name, strings.ToLower(strings.TrimSpace(input.Email)),
		input.Subject, input.Message, string(types.InquiryNew), input.UserID))
}

func (r *inquiryRepo) GetByID(ctx context.Context, id int64) (*repository.Inquiry, error) {
	query := `SELECT` + inquiryCols + ` FROM inquiries WHERE id = $1`
	q, err := scanInquiry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, inquiry_id, admin_user_id, body, created_at
		FROM inquiry_replies WHERE inquiry_id = $1 ORDER BY created_at`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rep repository.InquiryReply
		if err := rows.Scan(&rep.ID, &rep.InquiryID, &rep.AdminUserID,
			&rep.Body, &rep.CreatedAt); err != nil {
			return nil, err
		}
		q.Replies = append(q.Replies, rep)
	}
	return q, rows.Err()
}

func (r *inquiryRepo) List(ctx context.Context, filter repository.InquiryListFilter) ([]repository.Inquiry, int, error) {
	limit := clampLimit(filter.Limit, 50, 200)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"TRUE"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR subject ILIKE $%d)", n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inquiries WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT` + inquiryCols + ` FROM inquiries WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []repository.Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *inquiryRepo) Stats(ctx context.Context) (*repository.InquiryStats, error) {
	var st repository.InquiryStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3),
		       COUNT(*) FILTER (WHERE status = $4)
		FROM inquiries`,
		string(types.InquiryNew), string(types.InquiryInProgress),
		string(types.InquiryAnswered), string(types.InquiryClosed),
	).Scan(&st.Total, &st.New, &st.InProgress, &st.Answered, &st.Closed)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *inquiryRepo) Reply(ctx context.Context, inquiryID, adminUserID int64, body string) (*repository.InquiryReply, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var rep repository.InquiryReply
	err = tx.QueryRow(ctx, `
		INSERT INTO inquiry_replies (inquiry_id, admin_user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, inquiry_id, admin_user_id, body, created_at`,
		inquiryID, adminUserID, body,
	).Scan(&rep.ID, &rep.InquiryID, &rep.AdminUserID, &rep.Body, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(types.InquiryAnswered), inquiryID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, repository.ErrNotFound
	}
	return &rep, tx.Commit(ctx)
}

func (r *inquiryRepo) SetStatus(ctx context.Context, inquiryID int64, status types.InquiryStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), inquiryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *inquiryRepo) SetMemo(ctx context.Context, inquiryID int64, memo string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inquiries SET admin_memo = $1, updated_at = NOW() WHERE id = $2`,
		memo, inquiryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrNotFound
	}
	return nil
}
