package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

// Warranty representa una garantía digital vinculada a un token físico.
type Warranty struct {
	ID                    int64
	PublicID              string // uuid expuesto al exterior
	Token                 string
	OwnerUserID           *int64
	Status                types.WarrantyStatus
	ProductName           string
	SerialNumber          string
	SourceOrderItemUnitID *int64
	CreatedAt             time.Time
	ActivatedAt           *time.Time
	VerifiedAt            *time.Time
	RevokedAt             *time.Time
	UpdatedAt             time.Time

	// Soft delete: nunca se borra la fila.
	DeletedAt    *time.Time
	DeleteReason *string
	DeletedBy    *int64
}

// Deleted retorna true si la garantía fue soft-deleted.
func (w *Warranty) Deleted() bool { return w.DeletedAt != nil }

// WarrantyEvent es una entrada append-only del historial de una garantía.
// old_value/new_value son JSON con los campos afectados.
type WarrantyEvent struct {
	EventID     int64
	WarrantyID  int64
	EventType   types.WarrantyEventType
	OldValue    json.RawMessage
	NewValue    json.RawMessage
	ChangedBy   string // "admin" | "user"
	ChangedByID int64
	Reason      string
	CreatedAt   time.Time
}

// WarrantyListFilter opciones para listar garantías en el admin.
type WarrantyListFilter struct {
	Query  string // token, public_id, product_name o email del dueño
	Status types.WarrantyStatus
	Limit  int // default 50, max 200
	Offset int
}

// WarrantyListRow fila del listado admin: la garantía más el email del
// dueño actual, para no hacer N+1 desde el controller.
type WarrantyListRow struct {
	Warranty
	OwnerEmail *string
}

// WarrantyDetail agrupa todo lo que muestra la vista de detalle del admin.
type WarrantyDetail struct {
	Warranty   Warranty
	Owner      *User
	Token      *TokenMaster
	Events     []WarrantyEvent
	Transfers  []WarrantyTransfer
	ScanLogs   []ScanLog
	OrderID    *int64
	UnitStatus types.UnitStatus
}

// RefundInput datos para procesar un reembolso. RefundEventID es la
// Idempotency-Key del request (UUID, ≤64 chars) ya validada arriba.
type RefundInput struct {
	WarrantyID    int64
	AdminUserID   int64
	Reason        string
	RefundEventID string
}

// RefundResult resultado de un reembolso. AlreadyProcessed indica que la
// misma Idempotency-Key ya fue aplicada: la respuesta repite el resultado
// original sin tocar nada.
type RefundResult struct {
	AlreadyProcessed bool
	CreditNoteID     int64
	OrderID          *int64
	NewOrderStatus   types.OrderStatus
}

// WarrantyRepository define operaciones sobre garantías.
//
// Todas las transiciones son UPDATEs condicionados al estado esperado;
// cero filas afectadas retorna ErrStaleState. Cada transición escribe su
// warranty_event dentro de la MISMA transacción: si el evento falla, la
// transición se revierte.
type WarrantyRepository interface {
	// GetByID busca una garantía por id interno. Retorna ErrNotFound si no
	// existe o está soft-deleted.
	GetByID(ctx context.Context, id int64) (*Warranty, error)

	// GetByPublicID busca por el uuid público.
	GetByPublicID(ctx context.Context, publicID string) (*Warranty, error)

	// GetByToken busca la garantía viva asociada a un token físico.
	GetByToken(ctx context.Context, token string) (*Warranty, error)

	// ListForUser lista las garantías no borradas de un usuario.
	ListForUser(ctx context.Context, userID int64) ([]Warranty, error)

	// List lista garantías para el admin. El segundo valor es el total
	// para paginación.
	List(ctx context.Context, filter WarrantyListFilter) ([]WarrantyListRow, int, error)

	// GetDetail arma la vista de detalle del admin.
	GetDetail(ctx context.Context, id int64) (*WarrantyDetail, error)

	// Activate pasa issued → active. Verifica que el caller sea el dueño y
	// que la unidad de origen no esté reembolsada. Retorna ErrStaleState si
	// el estado ya no es issued.
	Activate(ctx context.Context, warrantyID, userID int64) error

	// Suspend pasa issued|active → suspended.
	Suspend(ctx context.Context, warrantyID, adminUserID int64, reason string) error

	// Unsuspend pasa suspended → issued. Nunca restaura el estado previo.
	Unsuspend(ctx context.Context, warrantyID, adminUserID int64, reason string) error

	// ChangeOwner reasigna el dueño (garantía + token) por acción admin.
	ChangeOwner(ctx context.Context, warrantyID, newOwnerID, adminUserID int64, reason string) error

	// ProcessRefund ejecuta el reembolso completo en una transacción con
	// orden de locks orders → warranties: garantía → revoked, unidades →
	// refunded, stock → in_stock, nota de crédito, evento, estado de la
	// orden re-agregado. Idempotente por RefundEventID.
	ProcessRefund(ctx context.Context, input RefundInput) (*RefundResult, error)

	// ListEvents retorna el historial append-only de una garantía,
	// más reciente primero.
	ListEvents(ctx context.Context, warrantyID int64) ([]WarrantyEvent, error)
}
