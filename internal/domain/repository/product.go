package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product ítem del catálogo. El precio vive en la opción; acá queda el
// precio base para listados.
type Product struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	BasePrice   decimal.Decimal
	ImageURL    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Options     []ProductOption
}

// ProductOption variante concreta (color + talle) con su precio.
type ProductOption struct {
	ID        int64
	ProductID int64
	Color     string
	Size      *string // nil = talle único
	Price     decimal.Decimal
	ImageURL  string
	IsActive  bool
}

// ProductRepository define operaciones de catálogo. Solo lectura desde el
// API; el alta se hace por seed/SQL.
type ProductRepository interface {
	// List retorna los productos activos con sus opciones.
	List(ctx context.Context) ([]Product, error)

	// GetByID retorna un producto activo con opciones.
	GetByID(ctx context.Context, id int64) (*Product, error)
}
