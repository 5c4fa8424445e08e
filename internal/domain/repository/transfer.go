package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

// WarrantyTransfer es una solicitud de transferencia de dueño de una
// garantía. Solo puede existir una solicitud "requested" por garantía.
type WarrantyTransfer struct {
	ID             int64
	WarrantyID     int64
	FromUserID     int64
	ToEmail        string
	Code           string // 7 chars [0-9A-Z], generado con crypto/rand
	Status         types.TransferStatus
	ExpiresAt      time.Time
	CreatedAt      time.Time
	CompletedAt    *time.Time
	CompletedBy    *int64
	CancelledAt    *time.Time
	CancelReason   *string
	SnapshotStatus types.WarrantyStatus // estado de la garantía al solicitar
}

// Expired retorna true si la solicitud venció respecto de now.
func (t *WarrantyTransfer) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// CreateTransferInput datos para registrar una solicitud de transferencia.
// El código y el vencimiento los genera el service, no el repo.
type CreateTransferInput struct {
	WarrantyID int64
	FromUserID int64
	ToEmail    string
	Code       string
	ExpiresAt  time.Time
}

// AcceptTransferInput datos para aceptar una transferencia.
type AcceptTransferInput struct {
	TransferID  int64
	Code        string
	CallerID    int64
	CallerEmail string
}

// TransferRepository define operaciones sobre transferencias de dueño.
type TransferRepository interface {
	// GetLivePending retorna la solicitud requested y no vencida de una
	// garantía, o ErrNotFound.
	GetLivePending(ctx context.Context, warrantyID int64) (*WarrantyTransfer, error)

	// Create inserta una solicitud nueva en estado requested. Retorna
	// ErrConflict si ya existe una solicitud viva para la garantía.
	Create(ctx context.Context, input CreateTransferInput) (*WarrantyTransfer, error)

	// Accept consuma la transferencia en una transacción: FOR UPDATE sobre
	// la solicitud, comparación constant-time del código, email del caller
	// contra to_email, dueño y estado de la garantía sin cambios; luego
	// swap de dueño en warranties y token_master (guarded, affected==1
	// cada uno), solicitud → completed, transfer_logs y warranty_events.
	Accept(ctx context.Context, input AcceptTransferInput) (*TransferLog, error)

	// ListForWarranty historial de solicitudes de una garantía.
	ListForWarranty(ctx context.Context, warrantyID int64) ([]WarrantyTransfer, error)

	// ExpireStale marca expired toda solicitud requested ya vencida.
	// Retorna la cantidad afectada.
	ExpireStale(ctx context.Context) (int, error)
}

// TransferLog registro append-only de cada transferencia consumada.
// A diferencia de warranty_events, este log guarda explícitamente el par
// (dueño anterior, dueño nuevo) para auditoría de propiedad.
type TransferLog struct {
	ID           int64
	WarrantyID   int64
	Token        string
	FromUserID   int64
	ToUserID     int64
	TransferID   *int64 // nil cuando la transferencia la forzó el CLI
	AdminUserID  *int64 // nil salvo transferencia forzada por un admin
	Reason       string
	PerformedVia string // "api" | "cli"
	CreatedAt    time.Time
}
