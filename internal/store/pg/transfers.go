package pg

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

type transferRepo struct {
	pool *pgxpool.Pool
}

const transferCols = `
	id, warranty_id, from_user_id, to_email, code, status, expires_at,
	created_at, completed_at, completed_by, cancelled_at, cancel_reason,
	snapshot_status`

func scanTransfer(row pgx.Row) (*repository.WarrantyTransfer, error) {
	var t repository.WarrantyTransfer
	err := row.Scan(
		&t.ID, &t.WarrantyID, &t.FromUserID, &t.ToEmail, &t.Code, &t.Status,
		&t.ExpiresAt, &t.CreatedAt, &t.CompletedAt, &t.CompletedBy,
		&t.CancelledAt, &t.CancelReason, &t.SnapshotStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) GetLivePending(ctx context.Context, warrantyID int64) (*repository.WarrantyTransfer, error) {
	query := `SELECT` + transferCols + `
		FROM warranty_transfers
		WHERE warranty_id = $1 AND status = $2 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1`
	return scanTransfer(r.pool.QueryRow(ctx, query, warrantyID, string(types.TransferRequested)))
}

func (r *transferRepo) Create(ctx context.Context, input repository.CreateTransferInput) (*repository.WarrantyTransfer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Candado contra dobles solicitudes: si hay una viva, conflicto.
	var existing int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM warranty_transfers
		 WHERE warranty_id = $1 AND status = $2 AND expires_at > NOW()
		 FOR UPDATE`,
		input.WarrantyID, string(types.TransferRequested),
	).Scan(&existing)
	if err == nil {
		return nil, repository.ErrConflict
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var snapshot string
	err = tx.QueryRow(ctx,
		`SELECT status FROM warranties WHERE id = $1 AND deleted_at IS NULL`,
		input.WarrantyID,
	).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO warranty_transfers
			(warranty_id, from_user_id, to_email, code, status, expires_at, snapshot_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING` + transferCols
	t, err := scanTransfer(tx.QueryRow(ctx, query,
		input.WarrantyID, input.FromUserID, strings.ToLower(input.ToEmail),
		input.Code, string(types.TransferRequested), input.ExpiresAt, snapshot))
	if err != nil {
		return nil, err
	}
	return t, tx.Commit(ctx)
}

func (r *transferRepo) Accept(ctx context.Context, input repository.AcceptTransferInput) (*repository.TransferLog, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT` + transferCols + `
		FROM warranty_transfers WHERE id = $1 FOR UPDATE`
	t, err := scanTransfer(tx.QueryRow(ctx, query, input.TransferID))
	if err != nil {
		return nil, err
	}

	if t.Status != types.TransferRequested || t.Expired(time.Now()) {
		return nil, repository.ErrStaleState
	}
	// Comparación constant-time: el código es un secreto de un solo uso.
	if subtle.ConstantTimeCompare([]byte(strings.ToUpper(input.Code)), []byte(t.Code)) != 1 {
		return nil, repository.ErrInvalidInput
	}
	if !strings.EqualFold(input.CallerEmail, t.ToEmail) {
		return nil, repository.ErrInvalidInput
	}

	// La garantía debe seguir activa y en manos del solicitante.
	var token string
	var ownerID *int64
	var status string
	err = tx.QueryRow(ctx,
		`SELECT token, owner_user_id, status FROM warranties
		 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		t.WarrantyID,
	).Scan(&token, &ownerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ownerID == nil || *ownerID != t.FromUserID || types.WarrantyStatus(status) != types.StatusActive {
		return nil, repository.ErrStaleState
	}

	// Swap de dueño, guarded: el WHERE repite dueño y estado esperados.
	tag, err := tx.Exec(ctx,
		`UPDATE warranties SET owner_user_id = $1, updated_at = NOW()
		 WHERE id = $2 AND owner_user_id = $3 AND status = $4 AND deleted_at IS NULL`,
		input.CallerID, t.WarrantyID, t.FromUserID, string(types.StatusActive))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, repository.ErrStaleState
	}

	tag, err = tx.Exec(ctx,
		`UPDATE token_master SET owner_user_id = $1, updated_at = NOW()
		 WHERE token = $2 AND owner_user_id = $3`,
		input.CallerID, token, t.FromUserID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, repository.ErrStaleState
	}

	if _, err := tx.Exec(ctx,
		`UPDATE warranty_transfers
		 SET status = $1, completed_at = NOW(), completed_by = $2
		 WHERE id = $3`,
		string(types.TransferCompleted), input.CallerID, t.ID); err != nil {
		return nil, err
	}

	var log repository.TransferLog
	err = tx.QueryRow(ctx, `
		INSERT INTO transfer_logs
			(warranty_id, token, from_user_id, to_user_id, transfer_id, admin_user_id, reason, performed_via)
		VALUES ($1, $2, $3, $4, $5, NULL, '', 'api')
		RETURNING id, warranty_id, token, from_user_id, to_user_id, transfer_id, admin_user_id, reason, performed_via, created_at`,
		t.WarrantyID, token, t.FromUserID, input.CallerID, t.ID,
	).Scan(&log.ID, &log.WarrantyID, &log.Token, &log.FromUserID,
		&log.ToUserID, &log.TransferID, &log.AdminUserID, &log.Reason,
		&log.PerformedVia, &log.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertEvent(ctx, tx, t.WarrantyID, types.EventOwnershipTransferred,
		ownerPayload{OwnerUserID: &t.FromUserID}, ownerPayload{OwnerUserID: &input.CallerID},
		"user", input.CallerID, "ownership transfer accepted"); err != nil {
		return nil, err
	}
	return &log, tx.Commit(ctx)
}

func (r *transferRepo) ListForWarranty(ctx context.Context, warrantyID int64) ([]repository.WarrantyTransfer, error) {
	query := `SELECT` + transferCols + `
		FROM warranty_transfers
		WHERE warranty_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, warrantyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.WarrantyTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *transferRepo) ExpireStale(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE warranty_transfers SET status = $1
		 WHERE status = $2 AND expires_at <= NOW()`,
		string(types.TransferExpired), string(types.TransferRequested))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
