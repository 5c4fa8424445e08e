// Package admin define los contratos JSON de la consola de administración.
package admin

// WarrantyRow fila del listado de garantías.
type WarrantyRow struct {
	ID          int64   `json:"id"`
	PublicID    string  `json:"public_id"`
	Token       string  `json:"token"`
	Status      string  `json:"status"`
	ProductName string  `json:"product_name"`
	OwnerEmail  *string `json:"owner_email"`
	CreatedAt   string  `json:"created_at"`
	Deleted     bool    `json:"deleted"`
}

// WarrantyListResponse listado paginado más el total.
type WarrantyListResponse struct {
	Warranties []WarrantyRow `json:"warranties"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// EventResponse entrada del historial de una garantía.
type EventResponse struct {
	EventID     int64           `json:"event_id"`
	EventType   string          `json:"event_type"`
	OldValue    any             `json:"old_value,omitempty"`
	NewValue    any             `json:"new_value,omitempty"`
	ChangedBy   string          `json:"changed_by"`
	ChangedByID int64           `json:"changed_by_id"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// ScanResponse escaneo reciente de un token.
type ScanResponse struct {
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	ScannedAt string `json:"scanned_at"`
}

// TransferRow solicitud de transferencia en el historial de una garantía.
type TransferRow struct {
	ID          int64   `json:"id"`
	ToEmail     string  `json:"to_email"`
	Status      string  `json:"status"`
	ExpiresAt   string  `json:"expires_at"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// WarrantyDetailResponse vista completa de una garantía.
type WarrantyDetailResponse struct {
	ID             int64           `json:"id"`
	PublicID       string          `json:"public_id"`
	Token          string          `json:"token"`
	Status         string          `json:"status"`
	ProductName    string          `json:"product_name"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	CreatedAt      string          `json:"created_at"`
	ActivatedAt    *string         `json:"activated_at,omitempty"`
	RevokedAt      *string         `json:"revoked_at,omitempty"`
	Deleted        bool            `json:"deleted"`
	AdminActions   []string        `json:"admin_actions"`
	OwnerEmail     *string         `json:"owner_email,omitempty"`
	OwnerName      string          `json:"owner_name,omitempty"`
	TokenBlocked   bool            `json:"token_blocked"`
	TokenScanCount int64           `json:"token_scan_count"`
	OrderID        *int64          `json:"order_id,omitempty"`
	UnitStatus     string          `json:"unit_status,omitempty"`
	Events         []EventResponse `json:"events"`
	Transfers      []TransferRow   `json:"transfers"`
	ScanLogs       []ScanResponse  `json:"scan_logs"`
}

// EventRequest body de POST /admin/warranties/{id}/events. Type es la
// acción (suspend, unsuspend, revoke, owner_change); los params dependen
// de cada una.
type EventRequest struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`

	// owner_change
	NewOwnerID int64 `json:"new_owner_id,omitempty"`
}

// RefundRequest body de POST /admin/refunds/process. La Idempotency-Key
// viaja como header, no en el body.
type RefundRequest struct {
	WarrantyID int64  `json:"warranty_id"`
	Reason     string `json:"reason"`
}

// RefundResponse resultado del reembolso.
type RefundResponse struct {
	AlreadyProcessed bool   `json:"already_processed"`
	CreditNoteID     int64  `json:"credit_note_id"`
	OrderID          *int64 `json:"order_id,omitempty"`
	OrderStatus      string `json:"order_status,omitempty"`
}

// StockRow unidad de inventario.
type StockRow struct {
	ID              int64   `json:"id"`
	ProductID       int64   `json:"product_id"`
	ProductOptionID *int64  `json:"product_option_id,omitempty"`
	Token           *string `json:"token,omitempty"`
	Status          string  `json:"status"`
	Location        string  `json:"location,omitempty"`
	Note            string  `json:"note,omitempty"`
}

// StockListResponse listado paginado de stock.
type StockListResponse struct {
	Units []StockRow `json:"units"`
	Total int        `json:"total"`
}

// StockStatsResponse agregados del inventario.
type StockStatsResponse struct {
	Total    int64 `json:"total"`
	InStock  int64 `json:"in_stock"`
	Reserved int64 `json:"reserved"`
	Sold     int64 `json:"sold"`
}

// StockCreateRequest alta de unidades.
type StockCreateRequest struct {
	ProductID       int64    `json:"product_id"`
	ProductOptionID *int64   `json:"product_option_id"`
	Tokens          []string `json:"tokens"`
	Location        string   `json:"location"`
	Note            string   `json:"note"`
}

// StockCorrectRequest ajuste manual de una unidad.
type StockCorrectRequest struct {
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason"`
}

// TokenCreateRequest alta de un token físico.
type TokenCreateRequest struct {
	Token        string `json:"token"`
	ProductName  string `json:"product_name"`
	InternalCode string `json:"internal_code"`
}

// TokenPatchRequest cambios parciales sobre un token. Punteros nil
// significan sin cambio.
type TokenPatchRequest struct {
	IsBlocked   *bool   `json:"is_blocked"`
	OwnerUserID *int64  `json:"owner_user_id"`
	ClearOwner  bool    `json:"clear_owner"`
	ProductName *string `json:"product_name"`
}

// TokenResponse token físico.
type TokenResponse struct {
	TokenPK      int64  `json:"token_pk"`
	Token        string `json:"token"`
	ProductName  string `json:"product_name"`
	InternalCode string `json:"internal_code,omitempty"`
	OwnerUserID  *int64 `json:"owner_user_id,omitempty"`
	IsBlocked    bool   `json:"is_blocked"`
	ScanCount    int64  `json:"scan_count"`
	CreatedAt    string `json:"created_at"`
}

// TokenSearchRow resultado de búsqueda de tokens.
type TokenSearchRow struct {
	Token          string  `json:"token"`
	ProductName    string  `json:"product_name"`
	InternalCode   string  `json:"internal_code,omitempty"`
	IsBlocked      bool    `json:"is_blocked"`
	ScanCount      int64   `json:"scan_count"`
	WarrantyID     *int64  `json:"warranty_id,omitempty"`
	WarrantyStatus *string `json:"warranty_status,omitempty"`
	OwnerEmail     *string `json:"owner_email,omitempty"`
}

// TokenSearchResponse listado de búsqueda.
type TokenSearchResponse struct {
	Tokens []TokenSearchRow `json:"tokens"`
}
