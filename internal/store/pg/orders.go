package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

type orderRepo struct {
	pool *pgxpool.Pool
}

const orderCols = `
	id, order_number, user_id, status, total_price, currency,
	shipping_name, shipping_phone, shipping_address, shipping_zip,
	shipping_country, payment_ref, created_at, updated_at`

func scanOrder(row pgx.Row) (*repository.Order, error) {
	var o repository.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.TotalPrice, &o.Currency,
		&o.ShippingName, &o.ShippingPhone, &o.ShippingAddress, &o.ShippingZip,
		&o.ShippingCountry, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// newOrderNumber genera un número legible y único: PM-YYYYMMDD-XXXXXX.
func newOrderNumber(now time.Time) string {
	suffix := uuid.NewString()[:6]
	return fmt.Sprintf("PM-%s-%s", now.Format("20060102"), suffix)
}

func (r *orderRepo) Create(ctx context.Context, input repository.CreateOrderInput) (*repository.Order, error) {
	if len(input.Items) == 0 {
		return nil, repository.ErrInvalidInput
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Precios siempre del catálogo, nunca del payload.
	type priced struct {
		in    repository.CreateOrderItemInput
		name  string
		price decimal.Decimal
	}
	items := make([]priced, 0, len(input.Items))
	total := decimal.Zero
	for _, it := range input.Items {
		var name string
		var price decimal.Decimal
		if it.ProductOptionID != nil {
			err = tx.QueryRow(ctx, `
				SELECT p.name, po.price
				FROM product_options po
				JOIN products p ON p.id = po.product_id
				WHERE po.id = $1 AND po.product_id = $2 AND po.is_active AND p.is_active`,
				*it.ProductOptionID, it.ProductID,
			).Scan(&name, &price)
		} else {
			err = tx.QueryRow(ctx,
				`SELECT name, base_price FROM products WHERE id = $1 AND is_active`,
				it.ProductID,
			).Scan(&name, &price)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrInvalidInput
		}
		if err != nil {
			return nil, err
		}
		items = append(items, priced{in: it, name: name, price: price})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	query := `
		INSERT INTO orders
			(order_number, user_id, status, total_price, currency,
			 shipping_name, shipping_phone, shipping_address, shipping_zip, shipping_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + orderCols
	order, err := scanOrder(tx.QueryRow(ctx, query,
		newOrderNumber(time.Now()), input.UserID, string(types.OrderPending),
		total, input.Currency, input.ShippingName, input.ShippingPhone,
		input.ShippingAddress, input.ShippingZip, input.ShippingCountry))
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		var item repository.OrderItem
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items
				(order_id, product_id, product_option_id, product_name, color, size, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, order_id, product_id, product_option_id, product_name, color, size, quantity, unit_price`,
			order.ID, it.in.ProductID, it.in.ProductOptionID, it.name,
			it.in.Color, it.in.Size, it.in.Quantity, it.price,
		).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductOptionID,
			&item.ProductName, &item.Color, &item.Size, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order, tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, orderID, userID int64) (*repository.Order, error) {
	query := `SELECT` + orderCols + ` FROM orders WHERE id = $1`
	args := []any{orderID}
	if userID != 0 {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	order, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) loadItems(ctx context.Context, order *repository.Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_option_id, product_name,
		       color, size, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := map[int64]int{}
	for rows.Next() {
		var item repository.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductOptionID, &item.ProductName, &item.Color, &item.Size,
			&item.Quantity, &item.UnitPrice); err != nil {
			return err
		}
		index[item.ID] = len(order.Items)
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	unitRows, err := r.pool.Query(ctx, `
		SELECT oiu.id, oiu.order_item_id, oiu.stock_unit_id, oiu.unit_status, oiu.refunded_at
		FROM order_item_units oiu
		JOIN order_items oi ON oi.id = oiu.order_item_id
		WHERE oi.order_id = $1
		ORDER BY oiu.id`,
		order.ID)
	if err != nil {
		return err
	}
	defer unitRows.Close()

	for unitRows.Next() {
		var u repository.OrderItemUnit
		if err := unitRows.Scan(&u.ID, &u.OrderItemID, &u.StockUnitID,
			&u.UnitStatus, &u.RefundedAt); err != nil {
			return err
		}
		if i, ok := index[u.OrderItemID]; ok {
			order.Items[i].Units = append(order.Items[i].Units, u)
		}
	}
	return unitRows.Err()
}

func (r *orderRepo) ListForUser(ctx context.Context, userID int64) ([]repository.Order, error) {
	query := `SELECT` + orderCols + `
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ConfirmPaid confirma el pago en una transacción: orden pending → paid,
// asignación de stock (SKIP LOCKED contra checkouts concurrentes) y una
// garantía issued por cada unidad que tenga token físico asignado.
func (r *orderRepo) ConfirmPaid(ctx context.Context, orderID int64, paymentRef string) (*repository.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lockQ := `SELECT` + orderCols + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, lockQ, orderID))
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, payment_ref = $2, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		string(types.OrderPaid), paymentRef, orderID, string(types.OrderPending))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, repository.ErrStaleState
	}

	itemRows, err := tx.Query(ctx, `
		SELECT id, product_id, product_option_id, product_name, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, err
	}
	type line struct {
		id       int64
		product  int64
		option   *int64
		name     string
		quantity int
	}
	var lines []line
	for itemRows.Next() {
		var l line
		if err := itemRows.Scan(&l.id, &l.product, &l.option, &l.name, &l.quantity); err != nil {
			itemRows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		for n := 0; n < l.quantity; n++ {
			// SKIP LOCKED: dos confirmaciones concurrentes no pelean por
			// la misma unidad física.
			var stockID int64
			var stockToken *string
			err := tx.QueryRow(ctx, `
				SELECT id, token FROM stock_units
				WHERE product_id = $1
				  AND ($2::bigint IS NULL OR product_option_id = $2)
				  AND status = $3
				ORDER BY id
				FOR UPDATE SKIP LOCKED
				LIMIT 1`,
				l.product, l.option, string(types.StockInStock),
			).Scan(&stockID, &stockToken)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, repository.ErrConflict // sin stock suficiente
			}
			if err != nil {
				return nil, err
			}

			if _, err := tx.Exec(ctx,
				`UPDATE stock_units SET status = $1, updated_at = NOW() WHERE id = $2`,
				string(types.StockSold), stockID); err != nil {
				return nil, err
			}

			var unitID int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_item_units (order_item_id, stock_unit_id, unit_status)
				VALUES ($1, $2, $3)
				RETURNING id`,
				l.id, stockID, string(types.UnitAllocated),
			).Scan(&unitID); err != nil {
				return nil, err
			}

			// Sin token físico no hay garantía que emitir para la unidad.
			if stockToken == nil || *stockToken == "" {
				continue
			}
			var warrantyID int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO warranties
					(public_id, token, owner_user_id, status, product_name, serial_number, source_order_item_unit_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				uuid.NewString(), *stockToken, order.UserID,
				string(types.StatusIssued), l.name, *stockToken, unitID,
			).Scan(&warrantyID); err != nil {
				return nil, err
			}
			if _, err := tx.Exec(ctx,
				`UPDATE token_master SET owner_user_id = $1, updated_at = NOW() WHERE token = $2`,
				order.UserID, *stockToken); err != nil {
				return nil, err
			}
			if err := insertEvent(ctx, tx, warrantyID, types.EventStatusChange,
				statusPayload{}, statusPayload{Status: string(types.StatusIssued)},
				"user", order.UserID, "warranty issued on payment"); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID, 0)
}
