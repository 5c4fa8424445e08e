// Package verify define el contrato JSON del chequeo público de
// autenticidad de un token físico.
package verify

// Response resultado de GET /api/verify/{token}.
type Response struct {
	Genuine        bool    `json:"genuine"`
	Blocked        bool    `json:"blocked,omitempty"`
	ProductName    string  `json:"product_name,omitempty"`
	WarrantyStatus *string `json:"warranty_status,omitempty"`
	ScanCount      int64   `json:"scan_count,omitempty"`
}
