package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// tokenInfo es la vista combinada token_master + warranties que usan los
// comandos de transferencia y lookup.
type tokenInfo struct {
	TokenPK      int64
	Token        string
	ProductName  string
	InternalCode string
	OwnerUserID  *int64
	IsBlocked    bool
	ScanCount    int64
	LastScanned  *time.Time

	WarrantyID       int64
	WarrantyPublicID string
	WarrantyStatus   string
	WarrantyOwnerID  *int64
}

type scanEntry struct {
	IP        string
	UserAgent string
	ScannedAt time.Time
}

func connect(ctx context.Context, flags *rootFlags) (*pgx.Conn, error) {
	if flags.dsn == "" {
		return nil, errors.New("DATABASE_URL (or --dsn) is required")
	}
	conn, err := pgx.Connect(ctx, flags.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// resolveUser busca el id por email (case-insensitive, como el unique
// index de users).
func resolveUser(ctx context.Context, conn *pgx.Conn, email string) (int64, error) {
	var id int64
	err := conn.QueryRow(ctx,
		`SELECT id FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// lookupToken trae el token con su garantía viva (si existe). Garantías
// borradas no cuentan.
func lookupToken(ctx context.Context, conn *pgx.Conn, token string) (*tokenInfo, error) {
	var (
		info      tokenInfo
		wID       *int64
		wPublicID *string
		wStatus   *string
		wOwner    *int64
	)
	err := conn.QueryRow(ctx, `
		SELECT t.token_pk, t.token, t.product_name, t.internal_code,
		       t.owner_user_id, t.is_blocked, t.scan_count, t.last_scanned_at,
		       w.id, w.public_id::text, w.status, w.owner_user_id
		FROM token_master t
		LEFT JOIN warranties w ON w.token = t.token AND w.deleted_at IS NULL
		WHERE t.token = $1`, token,
	).Scan(
		&info.TokenPK, &info.Token, &info.ProductName, &info.InternalCode,
		&info.OwnerUserID, &info.IsBlocked, &info.ScanCount, &info.LastScanned,
		&wID, &wPublicID, &wStatus, &wOwner,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("token %q not found", token)
	}
	if err != nil {
		return nil, err
	}
	if wID != nil {
		info.WarrantyID = *wID
		info.WarrantyPublicID = *wPublicID
		info.WarrantyStatus = *wStatus
		info.WarrantyOwnerID = wOwner
	}
	return &info, nil
}

func recentScans(ctx context.Context, conn *pgx.Conn, token string, limit int) ([]scanEntry, error) {
	rows, err := conn.Query(ctx, `
		SELECT ip, user_agent, scanned_at
		FROM scan_logs
		WHERE token = $1
		ORDER BY scanned_at DESC
		LIMIT $2`, token, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanEntry
	for rows.Next() {
		var s scanEntry
		if err := rows.Scan(&s.IP, &s.UserAgent, &s.ScannedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// defaultTransferReason se registra cuando el operador no dio --reason.
const defaultTransferReason = "manual transfer via cli"

// effectiveReason normaliza el --reason del operador, con fallback al
// default del CLI.
func effectiveReason(reason string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return defaultTransferReason
}

// transferOwnership mueve la garantía y el token al nuevo dueño en una
// transacción. Los UPDATE repiten el dueño esperado en el WHERE: si otro
// proceso movió la fila entre la lectura y la escritura, RowsAffected
// no da 1 y todo se revierte con errIntegrity.
func transferOwnership(ctx context.Context, conn *pgx.Conn, info *tokenInfo, fromID, toID int64, reason string) error {
	reason = effectiveReason(reason)
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE warranties
		SET owner_user_id = $1, updated_at = NOW()
		WHERE id = $2 AND owner_user_id = $3 AND deleted_at IS NULL`,
		toID, info.WarrantyID, fromID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: warranty %d changed under us", errIntegrity, info.WarrantyID)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE token_master
		SET owner_user_id = $1, updated_at = NOW()
		WHERE token = $2 AND owner_user_id = $3`,
		toID, info.Token, fromID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: token %s changed under us", errIntegrity, info.Token)
	}

	// admin_user_id queda NULL: el CLI va por SQL directo y no tiene un
	// operador autenticado que anotar.
	_, err = tx.Exec(ctx, `
		INSERT INTO transfer_logs (warranty_id, token, from_user_id, to_user_id, transfer_id, performed_via, admin_user_id, reason)
		VALUES ($1, $2, $3, $4, NULL, 'cli', NULL, $5)`,
		info.WarrantyID, info.Token, fromID, toID, reason)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO warranty_events (warranty_id, event_type, old_value, new_value, changed_by, changed_by_id, reason)
		VALUES ($1, 'owner_change', jsonb_build_object('owner_user_id', $2::bigint),
		        jsonb_build_object('owner_user_id', $3::bigint), 'admin', 0, $4)`,
		info.WarrantyID, fromID, toID, reason)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// softDeleteWarranty marca la garantía como borrada y bloquea su token,
// en una transacción.
func softDeleteWarranty(ctx context.Context, conn *pgx.Conn, info *tokenInfo, reason string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE warranties
		SET deleted_at = NOW(), delete_reason = $1, deleted_by = 0, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL`,
		reason, info.WarrantyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: warranty %d already deleted or gone", errIntegrity, info.WarrantyID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE token_master SET is_blocked = TRUE, updated_at = NOW() WHERE token = $1`,
		info.Token)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// setTokenBlocked cambia is_blocked. Al bloquear guarda el motivo; al
// desbloquear lo limpia.
func setTokenBlocked(ctx context.Context, conn *pgx.Conn, token string, blocked bool, reason string) error {
	var blockReason *string
	if blocked {
		if r := strings.TrimSpace(reason); r != "" {
			blockReason = &r
		}
	}
	tag, err := conn.Exec(ctx, `
		UPDATE token_master SET is_blocked = $1, block_reason = $2, updated_at = NOW() WHERE token = $3`,
		blocked, blockReason, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("token %q not found", token)
	}
	return nil
}

func searchTokens(ctx context.Context, conn *pgx.Conn, term string, limit int) ([]tokenInfo, error) {
	rows, err := conn.Query(ctx, `
		SELECT t.token_pk, t.token, t.product_name, t.internal_code,
		       t.owner_user_id, t.is_blocked, t.scan_count, t.last_scanned_at
		FROM token_master t
		WHERE t.token ILIKE '%' || $1 || '%'
		   OR t.internal_code ILIKE '%' || $1 || '%'
		   OR t.product_name ILIKE '%' || $1 || '%'
		ORDER BY t.token_pk
		LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tokenInfo
	for rows.Next() {
		var info tokenInfo
		if err := rows.Scan(
			&info.TokenPK, &info.Token, &info.ProductName, &info.InternalCode,
			&info.OwnerUserID, &info.IsBlocked, &info.ScanCount, &info.LastScanned,
		); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
