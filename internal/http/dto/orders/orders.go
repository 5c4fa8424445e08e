// Package orders define los contratos JSON de checkout y órdenes.
package orders

import "github.com/dropDatabas3/prepmood/internal/checkout"

// CreateRequest body de POST /api/orders. Las líneas llegan sin validar
// y pasan por internal/checkout.
type CreateRequest struct {
	Items    []checkout.RawItem `json:"items"`
	Shipping ShippingRequest    `json:"shipping"`
}

// ShippingRequest dirección de envío del checkout.
type ShippingRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Memo       string `json:"memo"`
}

// UnitResponse unidad física dentro de una línea.
type UnitResponse struct {
	ID         int64  `json:"id"`
	UnitStatus string `json:"unit_status"`
}

// ItemResponse línea de la orden.
type ItemResponse struct {
	ID          int64          `json:"id"`
	ProductID   int64          `json:"product_id"`
	ProductName string         `json:"product_name"`
	Color       string         `json:"color"`
	Size        *string        `json:"size"`
	Quantity    int            `json:"quantity"`
	UnitPrice   string         `json:"unit_price"`
	Units       []UnitResponse `json:"units,omitempty"`
}

// OrderResponse cabecera + líneas.
type OrderResponse struct {
	ID          int64          `json:"id"`
	OrderNumber string         `json:"order_number"`
	Status      string         `json:"status"`
	TotalPrice  string         `json:"total_price"`
	Currency    string         `json:"currency"`
	CreatedAt   string         `json:"created_at"`
	Items       []ItemResponse `json:"items,omitempty"`
}

// CreateResponse respuesta de POST /api/orders: la orden pending más el
// intent de pago para el frontend.
type CreateResponse struct {
	Order        OrderResponse `json:"order"`
	PaymentRef   string        `json:"payment_ref"`
	ClientSecret string        `json:"client_secret"`
}

// ConfirmRequest body de POST /api/payments/confirm.
type ConfirmRequest struct {
	OrderID    int64  `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}
