package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

// Inquiry consulta entrante del formulario público de contacto.
type Inquiry struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    types.InquiryStatus
	AdminMemo string
	UserID    *int64 // nil para consultas anónimas
	CreatedAt time.Time
	UpdatedAt time.Time
	Replies   []InquiryReply
}

// InquiryReply respuesta de un admin a una consulta.
type InquiryReply struct {
	ID          int64
	InquiryID   int64
	AdminUserID int64
	Body        string
	CreatedAt   time.Time
}

// InquiryStats conteos por estado para el tablero del admin.
type InquiryStats struct {
	Total      int64
	New        int64
	InProgress int64
	Answered   int64
	Closed     int64
}

// InquiryListFilter filtros de listado en el admin.
type InquiryListFilter struct {
	Status types.InquiryStatus
	Query  string // busca en name/email/subject
	Limit  int
	Offset int
}

// CreateInquiryInput consulta nueva desde el formulario público.
type CreateInquiryInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	UserID  *int64
}

// InquiryRepository define operaciones sobre consultas.
type InquiryRepository interface {
	// Create registra una consulta en estado new.
	Create(ctx context.Context, input CreateInquiryInput) (*Inquiry, error)

	// GetByID retorna la consulta con sus respuestas.
	GetByID(ctx context.Context, id int64) (*Inquiry, error)

	// List lista consultas con filtros. El segundo valor es el total.
	List(ctx context.Context, filter InquiryListFilter) ([]Inquiry, int, error)

	// Stats conteos por estado.
	Stats(ctx context.Context) (*InquiryStats, error)

	// Reply agrega una respuesta y pasa la consulta a answered en la
	// misma transacción.
	Reply(ctx context.Context, inquiryID, adminUserID int64, body string) (*InquiryReply, error)

	// SetStatus cambia el estado.
	SetStatus(ctx context.Context, inquiryID int64, status types.InquiryStatus) error

	// SetMemo actualiza el memo interno del admin.
	SetMemo(ctx context.Context, inquiryID int64, memo string) error
}
