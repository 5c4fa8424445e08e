// Package inquiries implementa el formulario público de contacto y su
// consola de administración.
package inquiries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/inquiries"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Errores del flujo de consultas.
var (
	ErrMissingFields = fmt.Errorf("missing required fields")
	ErrInvalidStatus = fmt.Errorf("invalid inquiry status")
	ErrEmptyReply    = fmt.Errorf("reply body required")
)

const maxMessageLen = 4000

// Service define el flujo de consultas.
type Service interface {
	// Público
	Create(ctx context.Context, userID *int64, in dto.CreateRequest) (*dto.InquiryResponse, error)

	// Admin
	List(ctx context.Context, status, query string, limit, offset int) (*dto.ListResponse, error)
	Get(ctx context.Context, id int64) (*dto.InquiryResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Reply(ctx context.Context, inquiryID, adminUserID int64, in dto.ReplyRequest) (*dto.ReplyResponse, error)
	SetStatus(ctx context.Context, inquiryID int64, in dto.StatusRequest) error
	SetMemo(ctx context.Context, inquiryID int64, in dto.MemoRequest) error
}

// Deps dependencias del service.
type Deps struct {
	Inquiries repository.InquiryRepository
}

type service struct {
	deps Deps
}

// New crea el service de consultas.
func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Create(ctx context.Context, userID *int64, in dto.CreateRequest) (*dto.InquiryResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("inquiries.Create"))

	name := strings.TrimSpace(in.Name)
	mail := strings.TrimSpace(strings.ToLower(in.Email))
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)
	if name == "" || mail == "" || !strings.Contains(mail, "@") || subject == "" || message == "" {
		return nil, ErrMissingFields
	}
	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}

	iq, err := s.deps.Inquiries.Create(ctx, repository.CreateInquiryInput{
		Name:    name,
		Email:   mail,
		Subject: subject,
		Message: message,
		UserID:  userID,
	})
	if err != nil {
		return nil, err
	}

	log.Info("inquiry created", logger.InquiryID(iq.ID))
	resp := toInquiryResponse(iq)
	return &resp, nil
}

func (s *service) List(ctx context.Context, status, query string, limit, offset int) (*dto.ListResponse, error) {
	var st types.InquiryStatus
	if status != "" {
		st = types.InquiryStatus(status)
		if !st.IsValid() {
			return nil, ErrInvalidStatus
		}
	}
	items, total, err := s.deps.Inquiries.List(ctx, repository.InquiryListFilter{
		Status: st,
		Query:  strings.TrimSpace(query),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{
		Inquiries: make([]dto.InquiryResponse, 0, len(items)),
		Total:     total,
	}
	for i := range items {
		out.Inquiries = append(out.Inquiries, toInquiryResponse(&items[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*dto.InquiryResponse, error) {
	iq, err := s.deps.Inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toInquiryResponse(iq)
	return &resp, nil
}

func (s *service) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	st, err := s.deps.Inquiries.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{
		Total:      st.Total,
		New:        st.New,
		InProgress: st.InProgress,
		Answered:   st.Answered,
		Closed:     st.Closed,
	}, nil
}

func (s *service) Reply(ctx context.Context, inquiryID, adminUserID int64, in dto.ReplyRequest) (*dto.ReplyResponse, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, ErrEmptyReply
	}
	reply, err := s.deps.Inquiries.Reply(ctx, inquiryID, adminUserID, body)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("inquiry replied",
		logger.InquiryID(inquiryID),
		logger.UserID(adminUserID),
	)
	return &dto.ReplyResponse{
		ID:          reply.ID,
		AdminUserID: reply.AdminUserID,
		Body:        reply.Body,
		CreatedAt:   reply.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *service) SetStatus(ctx context.Context, inquiryID int64, in dto.StatusRequest) error {
	st := types.InquiryStatus(in.Status)
	if !st.IsValid() {
		return ErrInvalidStatus
	}
	return s.deps.Inquiries.SetStatus(ctx, inquiryID, st)
}

func (s *service) SetMemo(ctx context.Context, inquiryID int64, in dto.MemoRequest) error {
	return s.deps.Inquiries.SetMemo(ctx, inquiryID, strings.TrimSpace(in.Memo))
}

func toInquiryResponse(iq *repository.Inquiry) dto.InquiryResponse {
	out := dto.InquiryResponse{
		ID:        iq.ID,
		Name:      iq.Name,
		Email:     iq.Email,
		Subject:   iq.Subject,
		Message:   iq.Message,
		Status:    string(iq.Status),
		AdminMemo: iq.AdminMemo,
		CreatedAt: iq.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, r := range iq.Replies {
		out.Replies = append(out.Replies, dto.ReplyResponse{
			ID:          r.ID,
			AdminUserID: r.AdminUserID,
			Body:        r.Body,
			CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
