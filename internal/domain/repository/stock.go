package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

// StockUnit unidad física de inventario. Una unidad vendida apunta desde
// order_item_units; al reembolsar vuelve a in_stock.
type StockUnit struct {
	ID              int64
	ProductID       int64
	ProductOptionID *int64
	Token           *string // token físico cosido, si ya fue asignado
	Status          types.StockStatus
	Location        string
	Note            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockStats agregados para el tablero de stock del admin.
type StockStats struct {
	Total    int64
	InStock  int64
	Reserved int64
	Sold     int64
}

// StockCorrection ajuste manual de inventario registrado por un admin.
type StockCorrection struct {
	ID          int64
	StockUnitID int64
	OldStatus   types.StockStatus
	NewStatus   types.StockStatus
	Reason      string
	AdminUserID int64
	CreatedAt   time.Time
}

// StockListFilter filtros del listado de stock en el admin.
type StockListFilter struct {
	ProductID int64
	Status    types.StockStatus
	Limit     int
	Offset    int
}

// CreateStockInput alta de unidades de inventario.
type CreateStockInput struct {
	ProductID       int64
	ProductOptionID *int64
	Tokens          []string // un token por unidad; vacío = sin asignar
	Location        string
	Note            string
}

// StockRepository define operaciones sobre inventario.
type StockRepository interface {
	// List lista unidades con filtros. El segundo valor es el total.
	List(ctx context.Context, filter StockListFilter) ([]StockUnit, int, error)

	// Stats agregados por estado.
	Stats(ctx context.Context) (*StockStats, error)

	// Create da de alta unidades in_stock. Retorna las creadas.
	Create(ctx context.Context, input CreateStockInput) ([]StockUnit, error)

	// Correct ajusta el estado de una unidad y registra la corrección en
	// la misma transacción.
	Correct(ctx context.Context, unitID int64, newStatus types.StockStatus, reason string, adminUserID int64) (*StockUnit, error)
}
