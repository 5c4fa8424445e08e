package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

// Order cabecera de una orden. El status es un agregado derivado de sus
// unidades; se recalcula dentro de la misma tx que las muta.
type Order struct {
	ID          int64
	OrderNumber string
	UserID      int64
	Status      types.OrderStatus
	TotalPrice  decimal.Decimal
	Currency    string

	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingZip     string
	ShippingCountry string

	PaymentRef *string // id externo del gateway, nil hasta confirmar
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []OrderItem
}

// OrderItem línea de la orden (producto+opción × cantidad).
type OrderItem struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	ProductOptionID *int64
	ProductName     string
	Color           string
	Size            *string
	Quantity        int
	UnitPrice       decimal.Decimal
	Units           []OrderItemUnit
}

// OrderItemUnit unidad física individual dentro de una línea. Los
// reembolsos y las garantías operan a este nivel, nunca sobre la línea.
type OrderItemUnit struct {
	ID          int64
	OrderItemID int64
	StockUnitID *int64
	UnitStatus  types.UnitStatus
	RefundedAt  *time.Time
}

// CreateOrderInput payload ya normalizado por internal/checkout.
type CreateOrderInput struct {
	UserID   int64
	Currency string

	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingZip     string
	ShippingCountry string

	Items []CreateOrderItemInput
}

// CreateOrderItemInput línea validada de la orden.
type CreateOrderItemInput struct {
	ProductID       int64
	ProductOptionID *int64
	Quantity        int
	Color           string
	Size            *string
}

// OrderRepository define operaciones sobre órdenes.
type OrderRepository interface {
	// Create crea la orden en estado pending con sus líneas. Los precios
	// se leen del catálogo dentro de la misma transacción, nunca del
	// cliente.
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)

	// GetByID retorna la orden con líneas y unidades. Retorna ErrNotFound
	// si no existe o no pertenece a userID (0 = sin chequeo, admin).
	GetByID(ctx context.Context, orderID, userID int64) (*Order, error)

	// ListForUser lista las órdenes de un usuario, más reciente primero.
	ListForUser(ctx context.Context, userID int64) ([]Order, error)

	// ConfirmPaid marca la orden como pagada en una transacción: asigna
	// stock_units in_stock → sold, crea order_item_units y emite una
	// garantía issued por unidad con token asignado. Retorna ErrStaleState
	// si la orden ya no está pending.
	ConfirmPaid(ctx context.Context, orderID int64, paymentRef string) (*Order, error)
}

// CreditNote nota de crédito emitida por un reembolso. refund_event_id es
// la Idempotency-Key del request que lo originó: UNIQUE, y el candado que
// hace al reembolso idempotente.
type CreditNote struct {
	ID            int64
	OrderID       int64
	WarrantyID    int64
	RefundEventID string
	Amount        decimal.Decimal
	Reason        string
	IssuedBy      int64
	CreatedAt     time.Time
}
