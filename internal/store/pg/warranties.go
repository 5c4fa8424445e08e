package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

type warrantyRepo struct {
	pool *pgxpool.Pool
}

const warrantyCols = `
	id, public_id, token, owner_user_id, status, product_name, serial_number,
	source_order_item_unit_id, created_at, activated_at, verified_at,
	revoked_at, updated_at, deleted_at, delete_reason, deleted_by`

func scanWarranty(row pgx.Row) (*repository.Warranty, error) {
	var w repository.Warranty
	err := row.Scan(
		&w.ID, &w.PublicID, &w.Token, &w.OwnerUserID, &w.Status,
		&w.ProductName, &w.SerialNumber, &w.SourceOrderItemUnitID,
		&w.CreatedAt, &w.ActivatedAt, &w.VerifiedAt, &w.RevokedAt,
		&w.UpdatedAt, &w.DeletedAt, &w.DeleteReason, &w.DeletedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warrantyRepo) GetByID(ctx context.Context, id int64) (*repository.Warranty, error) {
	query := `SELECT` + warrantyCols + ` FROM warranties WHERE id = $1 AND deleted_at IS NULL`
	return scanWarranty(r.pool.QueryRow(ctx, query, id))
}

func (r *warrantyRepo) GetByPublicID(ctx context.Context, publicID string) (*repository.Warranty, error) {
	query := `SELECT` + warrantyCols + ` FROM warranties WHERE public_id = $1 AND deleted_at IS NULL`
	return scanWarranty(r.pool.QueryRow(ctx, query, publicID))
}

func (r *warrantyRepo) GetByToken(ctx context.Context, token string) (*repository.Warranty, error) {
	query := `SELECT` + warrantyCols + ` FROM warranties WHERE token = $1 AND deleted_at IS NULL`
	return scanWarranty(r.pool.QueryRow(ctx, query, token))
}

func (r *warrantyRepo) ListForUser(ctx context.Context, userID int64) ([]repository.Warranty, error) {
	query := `SELECT` + warrantyCols + `
		FROM warranties
		WHERE owner_user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Warranty
	for rows.Next() {
		w, err := scanWarranty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *warrantyRepo) List(ctx context.Context, filter repository.WarrantyListFilter) ([]repository.WarrantyListRow, int, error) {
	limit := clampLimit(filter.Limit, 50, 200)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"w.deleted_at IS NULL"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("w.status = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(w.token ILIKE $%d OR w.public_id::text ILIKE $%d OR w.product_name ILIKE $%d OR u.email ILIKE $%d)",
			n, n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQ := `SELECT COUNT(*) FROM warranties w LEFT JOIN users u ON u.id = w.owner_user_id WHERE ` + cond
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listQ := `
		SELECT w.id, w.public_id, w.token, w.owner_user_id, w.status,
		       w.product_name, w.serial_number, w.source_order_item_unit_id,
		       w.created_at, w.activated_at, w.verified_at, w.revoked_at,
		       w.updated_at, w.deleted_at, w.delete_reason, w.deleted_by,
		       u.email
		FROM warranties w
		LEFT JOIN users u ON u.id = w.owner_user_id
		WHERE ` + cond + `
		ORDER BY w.created_at DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))
	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []repository.WarrantyListRow
	for rows.Next() {
		var row repository.WarrantyListRow
		if err := rows.Scan(
			&row.ID, &row.PublicID, &row.Token, &row.OwnerUserID, &row.Status,
			&row.ProductName, &row.SerialNumber, &row.SourceOrderItemUnitID,
			&row.CreatedAt, &row.ActivatedAt, &row.VerifiedAt, &row.RevokedAt,
			&row.UpdatedAt, &row.DeletedAt, &row.DeleteReason, &row.DeletedBy,
			&row.OwnerEmail,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

func (r *warrantyRepo) GetDetail(ctx context.Context, id int64) (*repository.WarrantyDetail, error) {
	w, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &repository.WarrantyDetail{Warranty: *w}

	if w.OwnerUserID != nil {
		var u repository.User
		err := r.pool.QueryRow(ctx,
			`SELECT id, email, password_hash, first_name, last_name, is_admin, created_at
			 FROM users WHERE id = $1`, *w.OwnerUserID,
		).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsAdmin, &u.CreatedAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			u.PasswordHash = "" // nunca sale del store en vistas
			detail.Owner = &u
		}
	}

	var tm repository.TokenMaster
	err = r.pool.QueryRow(ctx,
		`SELECT token_pk, token, product_name, internal_code, owner_user_id,
		        is_blocked, scan_count, first_scanned_at, last_scanned_at,
		        created_at, updated_at
		 FROM token_master WHERE token = $1`, w.Token,
	).Scan(&tm.TokenPK, &tm.Token, &tm.ProductName, &tm.InternalCode,
		&tm.OwnerUserID, &tm.IsBlocked, &tm.ScanCount, &tm.FirstScannedAt,
		&tm.LastScannedAt, &tm.CreatedAt, &tm.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Token = &tm
	}

	if detail.Events, err = r.ListEvents(ctx, id); err != nil {
		return nil, err
	}

	transfers := &transferRepo{pool: r.pool}
	if detail.Transfers, err = transfers.ListForWarranty(ctx, id); err != nil {
		return nil, err
	}

	tokens := &tokenRepo{pool: r.pool}
	if detail.ScanLogs, err = tokens.ListScans(ctx, w.Token, 20); err != nil {
		return nil, err
	}

	if w.SourceOrderItemUnitID != nil {
		var orderID int64
		var unitStatus string
		err := r.pool.QueryRow(ctx,
			`SELECT oi.order_id, oiu.unit_status
			 FROM order_item_units oiu
			 JOIN order_items oi ON oi.id = oiu.order_item_id
			 WHERE oiu.id = $1`, *w.SourceOrderItemUnitID,
		).Scan(&orderID, &unitStatus)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			detail.OrderID = &orderID
			detail.UnitStatus = types.UnitStatus(unitStatus)
		}
	}
	return detail, nil
}

// insertEvent escribe un warranty_event dentro de la tx dada. Forma parte
// de la misma transacción que la transición: si falla, todo se revierte.
func insertEvent(ctx context.Context, tx pgx.Tx, warrantyID int64, eventType types.WarrantyEventType, oldVal, newVal any, changedBy string, changedByID int64, reason string) error {
	oldJSON, err := json.Marshal(oldVal)
	if err != nil {
		return err
	}
	newJSON, err := json.Marshal(newVal)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO warranty_events
			(warranty_id, event_type, old_value, new_value, changed_by, changed_by_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		warrantyID, string(eventType), oldJSON, newJSON, changedBy, changedByID, reason)
	return err
}

// statusPayload es el formato de old_value/new_value en eventos de estado.
type statusPayload struct {
	Status string `json:"status"`
}

// transition ejecuta un UPDATE condicionado de estado + evento en una tx.
// Cero filas afectadas ⇒ ErrStaleState (el evento dirá qué pasó de verdad).
func (r *warrantyRepo) transition(ctx context.Context, warrantyID int64, from []types.WarrantyStatus, to types.WarrantyStatus, eventType types.WarrantyEventType, changedBy string, changedByID int64, reason string, extraSet string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Estado actual para el old_value del evento (y para distinguir
	// not-found de stale).
	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM warranties WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		warrantyID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}

	fromList := make([]string, len(from))
	for i, s := range from {
		fromList[i] = string(s)
	}
	set := "status = $1, updated_at = NOW()"
	if extraSet != "" {
		set += ", " + extraSet
	}
	tag, err := tx.Exec(ctx,
		`UPDATE warranties SET `+set+` WHERE id = $2 AND status = ANY($3) AND deleted_at IS NULL`,
		string(to), warrantyID, fromList)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrStaleState
	}

	if err := insertEvent(ctx, tx, warrantyID, eventType,
		statusPayload{Status: current}, statusPayload{Status: string(to)},
		changedBy, changedByID, reason); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *warrantyRepo) Activate(ctx context.Context, warrantyID, userID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current string
	var ownerID *int64
	var sourceUnit *int64
	err = tx.QueryRow(ctx,
		`SELECT status, owner_user_id, source_order_item_unit_id
		 FROM warranties WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		warrantyID,
	).Scan(&current, &ownerID, &sourceUnit)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID == nil || *ownerID != userID {
		return repository.ErrInvalidInput
	}

	// La unidad de origen no puede estar reembolsada.
	if sourceUnit != nil {
		var unitStatus string
		err := tx.QueryRow(ctx,
			`SELECT unit_status FROM order_item_units WHERE id = $1`, *sourceUnit,
		).Scan(&unitStatus)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil && types.UnitStatus(unitStatus) == types.UnitRefunded {
			return repository.ErrStaleState
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE warranties
		 SET status = $1, activated_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3 AND deleted_at IS NULL`,
		string(types.StatusActive), warrantyID, string(types.StatusIssued))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrStaleState
	}

	if err := insertEvent(ctx, tx, warrantyID, types.EventStatusChange,
		statusPayload{Status: current}, statusPayload{Status: string(types.StatusActive)},
		"user", userID, "warranty activated by owner"); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *warrantyRepo) Suspend(ctx context.Context, warrantyID, adminUserID int64, reason string) error {
	return r.transition(ctx, warrantyID,
		[]types.WarrantyStatus{types.StatusIssued, types.StatusActive},
		types.StatusSuspended, types.EventSuspend, "admin", adminUserID, reason, "")
}

func (r *warrantyRepo) Unsuspend(ctx context.Context, warrantyID, adminUserID int64, reason string) error {
	return r.transition(ctx, warrantyID,
		[]types.WarrantyStatus{types.StatusSuspended},
		types.StatusIssued, types.EventUnsuspend, "admin", adminUserID, reason, "")
}

// ownerPayload formato de old_value/new_value en eventos de dueño.
type ownerPayload struct {
	OwnerUserID *int64 `json:"owner_user_id"`
}

func (r *warrantyRepo) ChangeOwner(ctx context.Context, warrantyID, newOwnerID, adminUserID int64, reason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var token string
	var oldOwner *int64
	err = tx.QueryRow(ctx,
		`SELECT token, owner_user_id FROM warranties
		 WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		warrantyID,
	).Scan(&token, &oldOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE warranties SET owner_user_id = $1, updated_at = NOW() WHERE id = $2`,
		newOwnerID, warrantyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return repository.ErrStaleState
	}
	// El token maestro acompaña siempre al dueño de la garantía.
	if _, err := tx.Exec(ctx,
		`UPDATE token_master SET owner_user_id = $1, updated_at = NOW() WHERE token = $2`,
		newOwnerID, token); err != nil {
		return err
	}

	if err := insertEvent(ctx, tx, warrantyID, types.EventOwnerChange,
		ownerPayload{OwnerUserID: oldOwner}, ownerPayload{OwnerUserID: &newOwnerID},
		"admin", adminUserID, reason); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ProcessRefund ejecuta el reembolso en una transacción. Orden de locks:
// SIEMPRE orders antes que warranties, igual que en toda otra tx que toque
// ambas tablas.
func (r *warrantyRepo) ProcessRefund(ctx context.Context, input repository.RefundInput) (*repository.RefundResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Idempotencia: misma key ⇒ repetir el resultado original sin tocar nada.
	var existingNote int64
	var existingOrder *int64
	err = tx.QueryRow(ctx,
		`SELECT id, order_id FROM credit_notes WHERE refund_event_id = $1`,
		input.RefundEventID,
	).Scan(&existingNote, &existingOrder)
	if err == nil {
		return &repository.RefundResult{
			AlreadyProcessed: true,
			CreditNoteID:     existingNote,
			OrderID:          existingOrder,
		}, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Resolver la orden de origen ANTES de lockear la garantía, para
	// respetar el orden global orders → warranties.
	var orderID *int64
	var sourceUnit *int64
	err = tx.QueryRow(ctx,
		`SELECT w.source_order_item_unit_id, oi.order_id
		 FROM warranties w
		 LEFT JOIN order_item_units oiu ON oiu.id = w.source_order_item_unit_id
		 LEFT JOIN order_items oi ON oi.id = oiu.order_item_id
		 WHERE w.id = $1 AND w.deleted_at IS NULL`,
		input.WarrantyID,
	).Scan(&sourceUnit, &orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var amount decimal.Decimal
	if orderID != nil {
		var locked int64
		if err := tx.QueryRow(ctx,
			`SELECT id FROM orders WHERE id = $1 FOR UPDATE`, *orderID,
		).Scan(&locked); err != nil {
			return nil, err
		}
		if err := tx.QueryRow(ctx,
			`SELECT oi.unit_price
			 FROM order_item_units oiu
			 JOIN order_items oi ON oi.id = oiu.order_item_id
			 WHERE oiu.id = $1`, *sourceUnit,
		).Scan(&amount); err != nil {
			return nil, err
		}
	}

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM warranties WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		input.WarrantyID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Solo issued / issued_unassigned pueden reembolsarse; el service ya
	// tradujo los demás estados a errores específicos, esto es el candado
	// final contra carreras.
	tag, err := tx.Exec(ctx,
		`UPDATE warranties
		 SET status = $1, revoked_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = ANY($3) AND deleted_at IS NULL`,
		string(types.StatusRevoked), input.WarrantyID,
		[]string{string(types.StatusIssued), string(types.StatusIssuedUnassigned)})
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, repository.ErrStaleState
	}

	result := &repository.RefundResult{OrderID: orderID}

	if sourceUnit != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE order_item_units
			 SET unit_status = $1, refunded_at = NOW()
			 WHERE id = $2`,
			string(types.UnitRefunded), *sourceUnit); err != nil {
			return nil, err
		}
		// La unidad física vuelve al inventario.
		if _, err := tx.Exec(ctx,
			`UPDATE stock_units su SET status = $1, updated_at = NOW()
			 FROM order_item_units oiu
			 WHERE oiu.id = $2 AND su.id = oiu.stock_unit_id`,
			string(types.StockInStock), *sourceUnit); err != nil {
			return nil, err
		}
	}

	var noteOrderID int64
	if orderID != nil {
		noteOrderID = *orderID
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_notes (order_id, warranty_id, refund_event_id, amount, reason, issued_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		noteOrderID, input.WarrantyID, input.RefundEventID, amount,
		input.Reason, input.AdminUserID,
	).Scan(&result.CreditNoteID)
	if err != nil {
		if isUniqueViolation(err) {
			// Carrera con otro request de la misma key: el otro ganó.
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	if err := insertEvent(ctx, tx, input.WarrantyID, types.EventRevoke,
		statusPayload{Status: current}, statusPayload{Status: string(types.StatusRevoked)},
		"admin", input.AdminUserID, input.Reason); err != nil {
		return nil, err
	}

	if orderID != nil {
		newStatus, err := reaggregateOrderStatus(ctx, tx, *orderID)
		if err != nil {
			return nil, err
		}
		result.NewOrderStatus = newStatus
	}
	return result, tx.Commit(ctx)
}

// reaggregateOrderStatus recalcula el estado de la orden a partir de sus
// unidades y lo persiste. Debe llamarse dentro de la tx que mutó unidades.
func reaggregateOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64) (types.OrderStatus, error) {
	var total, refunded int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE oiu.unit_status = $2)
		FROM order_item_units oiu
		JOIN order_items oi ON oi.id = oiu.order_item_id
		WHERE oi.order_id = $1`,
		orderID, string(types.UnitRefunded),
	).Scan(&total, &refunded)
	if err != nil {
		return "", err
	}

	var status types.OrderStatus
	switch {
	case total > 0 && refunded == total:
		status = types.OrderRefunded
	case refunded > 0:
		status = types.OrderPartiallyRefunded
	default:
		// Sin unidades reembolsadas no hay nada que re-agregar.
		var cur string
		if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&cur); err != nil {
			return "", err
		}
		return types.OrderStatus(cur), nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), orderID); err != nil {
		return "", err
	}
	return status, nil
}

func (r *warrantyRepo) ListEvents(ctx context.Context, warrantyID int64) ([]repository.WarrantyEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT event_id, warranty_id, event_type, old_value, new_value,
		       changed_by, changed_by_id, reason, created_at
		FROM warranty_events
		WHERE warranty_id = $1
		ORDER BY created_at DESC, event_id DESC`,
		warrantyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.WarrantyEvent
	for rows.Next() {
		var ev repository.WarrantyEvent
		var oldVal, newVal []byte
		if err := rows.Scan(
			&ev.EventID, &ev.WarrantyID, &ev.EventType, &oldVal, &newVal,
			&ev.ChangedBy, &ev.ChangedByID, &ev.Reason, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		ev.OldValue = json.RawMessage(oldVal)
		ev.NewValue = json.RawMessage(newVal)
		out = append(out, ev)
	}
	return out, rows.Err()
}
