// Package inquiries define los contratos JSON del formulario de contacto
// y su consola admin.
package inquiries

// CreateRequest body de POST /api/inquiries.
type CreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ReplyResponse respuesta de un admin.
type ReplyResponse struct {
	ID          int64  `json:"id"`
	AdminUserID int64  `json:"admin_user_id"`
	Body        string `json:"body"`
	CreatedAt   string `json:"created_at"`
}

// InquiryResponse consulta con sus respuestas.
type InquiryResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Subject   string          `json:"subject"`
	Message   string          `json:"message"`
	Status    string          `json:"status"`
	AdminMemo string          `json:"admin_memo,omitempty"`
	CreatedAt string          `json:"created_at"`
	Replies   []ReplyResponse `json:"replies,omitempty"`
}

// ListResponse listado paginado del admin.
type ListResponse struct {
	Inquiries []InquiryResponse `json:"inquiries"`
	Total     int               `json:"total"`
}

// StatsResponse conteos por estado.
type StatsResponse struct {
	Total      int64 `json:"total"`
	New        int64 `json:"new"`
	InProgress int64 `json:"in_progress"`
	Answered   int64 `json:"answered"`
	Closed     int64 `json:"closed"`
}

// ReplyRequest body de POST /admin/inquiries/{id}/reply.
type ReplyRequest struct {
	Body string `json:"body"`
}

// StatusRequest body de PUT /admin/inquiries/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// MemoRequest body de PUT /admin/inquiries/{id}/memo.
type MemoRequest struct {
	Memo string `json:"memo"`
}
