package repository

import (
	"context"
	"time"
)

// TokenMaster es el registro maestro de un token físico (QR/NFC cosido al
// producto). La garantía referencia al token por su valor, no por el PK.
type TokenMaster struct {
	TokenPK        int64
	Token          string
	ProductName    string
	InternalCode   string
	OwnerUserID    *int64
	IsBlocked      bool
	ScanCount      int64
	FirstScannedAt *time.Time
	LastScannedAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScanLog registro append-only de cada escaneo de un token.
type ScanLog struct {
	ID        int64
	Token     string
	IP        string
	UserAgent string
	ScannedAt time.Time
}

// TokenSearchRow fila de resultado para búsquedas de tokens en el admin
// y en el CLI. Junta el token con su garantía (si existe) y el email del
// dueño actual.
type TokenSearchRow struct {
	Token          string
	ProductName    string
	InternalCode   string
	IsBlocked      bool
	ScanCount      int64
	WarrantyID     *int64
	WarrantyStatus *string
	OwnerEmail     *string
	CreatedAt      time.Time
}

// CreateTokenInput datos para registrar un token nuevo.
type CreateTokenInput struct {
	Token        string
	ProductName  string
	InternalCode string
}

// TokenPatch campos opcionales a actualizar sobre un token.
// Punteros nil significan "sin cambio". ClearOwner desvincula al dueño
// aunque OwnerUserID sea nil.
type TokenPatch struct {
	IsBlocked   *bool
	OwnerUserID *int64
	ClearOwner  bool
	ProductName *string
}

// TokenRepository define operaciones sobre tokens físicos.
type TokenRepository interface {
	// Create registra un token nuevo. Retorna ErrConflict si ya existe.
	Create(ctx context.Context, input CreateTokenInput) (*TokenMaster, error)

	// GetByPK busca por clave primaria.
	GetByPK(ctx context.Context, pk int64) (*TokenMaster, error)

	// GetByToken busca por el valor del token.
	GetByToken(ctx context.Context, token string) (*TokenMaster, error)

	// Patch aplica cambios parciales (block/unblock, reasignar dueño).
	Patch(ctx context.Context, pk int64, patch TokenPatch) (*TokenMaster, error)

	// Search busca en token/product_name/internal_code/email del dueño.
	Search(ctx context.Context, term string, limit int) ([]TokenSearchRow, error)

	// RecordScan registra un escaneo y actualiza los contadores del token.
	RecordScan(ctx context.Context, token, ip, userAgent string) error

	// ListScans escaneos recientes de un token, más reciente primero.
	ListScans(ctx context.Context, token string, limit int) ([]ScanLog, error)
}
