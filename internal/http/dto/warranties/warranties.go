// Package warranties define los contratos JSON del flujo de garantías
// del storefront.
package warranties

// WarrantyResponse garantía vista por su dueño.
type WarrantyResponse struct {
	PublicID     string  `json:"public_id"`
	Token        string  `json:"token"`
	Status       string  `json:"status"`
	ProductName  string  `json:"product_name"`
	SerialNumber string  `json:"serial_number,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ActivatedAt  *string `json:"activated_at,omitempty"`
}

// ListResponse respuesta de GET /api/warranties/me.
type ListResponse struct {
	Warranties []WarrantyResponse `json:"warranties"`
}

// ActivateRequest body de POST /api/warranties/{id}/activate. Agree debe
// venir en true: la activación es el punto de compromiso de la garantía.
type ActivateRequest struct {
	Agree bool `json:"agree"`
}

// TransferRequest body de POST /api/warranties/{id}/transfer.
type TransferRequest struct {
	ToEmail string `json:"to_email"`
}

// TransferResponse solicitud creada. El código viaja solo por mail al
// destinatario, nunca en esta respuesta.
type TransferResponse struct {
	TransferID int64  `json:"transfer_id"`
	ToEmail    string `json:"to_email"` // enmascarado
	ExpiresAt  string `json:"expires_at"`
}

// AcceptRequest body de POST /api/warranties/transfer/accept.
type AcceptRequest struct {
	TransferID int64  `json:"transfer_id"`
	Code       string `json:"code"`
}

// AcceptResponse transferencia consumada.
type AcceptResponse struct {
	WarrantyPublicID string `json:"warranty_public_id"`
	ProductName      string `json:"product_name"`
}
