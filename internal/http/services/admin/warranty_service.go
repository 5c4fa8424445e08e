// Package admin implementa las operaciones de la consola de
// administración: garantías, reembolsos, stock y tokens.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	"github.com/dropDatabas3/prepmood/internal/metrics"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Errores de la consola admin.
var (
	ErrReasonTooShort     = fmt.Errorf("reason too short")
	ErrUnknownEventType   = fmt.Errorf("unknown event type")
	ErrInvalidStatus      = fmt.Errorf("warranty status does not allow the action")
	ErrAlreadyRefunded    = fmt.Errorf("warranty already refunded")
	ErrActiveCannotRefund = fmt.Errorf("active warranty cannot be refunded")
	ErrMissingOwner       = fmt.Errorf("new owner required")
)

// WarrantyService operaciones admin sobre garantías.
type WarrantyService interface {
	List(ctx context.Context, query, status string, page, perPage int) (*dto.WarrantyListResponse, error)
	Detail(ctx context.Context, id int64) (*dto.WarrantyDetailResponse, error)
	ApplyEvent(ctx context.Context, warrantyID, adminUserID int64, in dto.EventRequest) error
	ListEvents(ctx context.Context, warrantyID int64) ([]dto.EventResponse, error)
	ProcessRefund(ctx context.Context, adminUserID int64, refundEventID string, in dto.RefundRequest) (*dto.RefundResponse, error)
}

// WarrantyDeps dependencias del service de garantías.
type WarrantyDeps struct {
	Warranties repository.WarrantyRepository
	Users      repository.UserRepository
}

type warrantyService struct {
	deps WarrantyDeps
}

// NewWarrantyService crea el service admin de garantías.
func NewWarrantyService(deps WarrantyDeps) WarrantyService {
	return &warrantyService{deps: deps}
}

func (s *warrantyService) List(ctx context.Context, query, status string, page, perPage int) (*dto.WarrantyListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	var st types.WarrantyStatus
	if status != "" {
		st = types.WarrantyStatus(status)
		if !st.IsValid() {
			return nil, repository.ErrInvalidInput
		}
	}

	rows, total, err := s.deps.Warranties.List(ctx, repository.WarrantyListFilter{
		Query:  strings.TrimSpace(query),
		Status: st,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}

	out := &dto.WarrantyListResponse{
		Warranties: make([]dto.WarrantyRow, 0, len(rows)),
		Total:      total,
		Page:       page,
		PerPage:    perPage,
	}
	for i := range rows {
		r := &rows[i]
		out.Warranties = append(out.Warranties, dto.WarrantyRow{
			ID:          r.ID,
			PublicID:    r.PublicID,
			Token:       r.Token,
			Status:      string(r.Status),
			ProductName: r.ProductName,
			OwnerEmail:  r.OwnerEmail,
			CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
			Deleted:     r.Deleted(),
		})
	}
	return out, nil
}

func (s *warrantyService) Detail(ctx context.Context, id int64) (*dto.WarrantyDetailResponse, error) {
	d, err := s.deps.Warranties.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	w := &d.Warranty
	out := &dto.WarrantyDetailResponse{
		ID:           w.ID,
		PublicID:     w.PublicID,
		Token:        w.Token,
		Status:       string(w.Status),
		ProductName:  w.ProductName,
		SerialNumber: w.SerialNumber,
		CreatedAt:    w.CreatedAt.UTC().Format(time.RFC3339),
		Deleted:      w.Deleted(),
		OrderID:      d.OrderID,
		UnitStatus:   string(d.UnitStatus),
	}
	for _, a := range w.Status.AdminActions() {
		out.AdminActions = append(out.AdminActions, string(a))
	}
	if w.ActivatedAt != nil {
		v := w.ActivatedAt.UTC().Format(time.RFC3339)
		out.ActivatedAt = &v
	}
	if w.RevokedAt != nil {
		v := w.RevokedAt.UTC().Format(time.RFC3339)
		out.RevokedAt = &v
	}
	if d.Owner != nil {
		out.OwnerEmail = &d.Owner.Email
		out.OwnerName = d.Owner.FullName()
	}
	if d.Token != nil {
		out.TokenBlocked = d.Token.IsBlocked
		out.TokenScanCount = d.Token.ScanCount
	}
	out.Events = toEventResponses(d.Events)
	for _, t := range d.Transfers {
		row := dto.TransferRow{
			ID:        t.ID,
			ToEmail:   t.ToEmail,
			Status:    string(t.Status),
			ExpiresAt: t.ExpiresAt.UTC().Format(time.RFC3339),
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if t.CompletedAt != nil {
			v := t.CompletedAt.UTC().Format(time.RFC3339)
			row.CompletedAt = &v
		}
		out.Transfers = append(out.Transfers, row)
	}
	for _, sc := range d.ScanLogs {
		out.ScanLogs = append(out.ScanLogs, dto.ScanResponse{
			IP:        sc.IP,
			UserAgent: sc.UserAgent,
			ScannedAt: sc.ScannedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// ApplyEvent ejecuta una acción admin sobre la garantía. revoked sólo se
// alcanza por el flujo de refund, nunca desde acá.
func (s *warrantyService) ApplyEvent(ctx context.Context, warrantyID, adminUserID int64, in dto.EventRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("admin.ApplyEvent"),
		logger.WarrantyID(warrantyID),
	)

	if !types.ValidReason(in.Reason) {
		return ErrReasonTooShort
	}

	w, err := s.deps.Warranties.GetByID(ctx, warrantyID)
	if err != nil {
		return err
	}

	var from, to types.WarrantyStatus
	switch in.Type {
	case "suspend":
		if !w.Status.CanSuspend() {
			return ErrInvalidStatus
		}
		from, to = w.Status, types.StatusSuspended
		err = s.deps.Warranties.Suspend(ctx, warrantyID, adminUserID, in.Reason)

	case "unsuspend":
		if !w.Status.CanUnsuspend() {
			return ErrInvalidStatus
		}
		// Siempre vuelve a issued: el estado previo no se restaura.
		from, to = w.Status, w.Status.AfterUnsuspend()
		err = s.deps.Warranties.Unsuspend(ctx, warrantyID, adminUserID, in.Reason)

	case "owner_change":
		if in.NewOwnerID <= 0 {
			return ErrMissingOwner
		}
		if _, uerr := s.deps.Users.GetByID(ctx, in.NewOwnerID); uerr != nil {
			return uerr
		}
		err = s.deps.Warranties.ChangeOwner(ctx, warrantyID, in.NewOwnerID, adminUserID, in.Reason)

	default:
		// revoke y status_change libres no existen como acciones directas.
		return ErrUnknownEventType
	}

	if err != nil {
		if repository.IsStaleState(err) {
			metrics.StaleStateConflicts.Inc()
		}
		return err
	}
	if to != "" {
		metrics.WarrantyTransitions.WithLabelValues(string(from), string(to)).Inc()
	}
	log.Info("admin event applied",
		logger.String("event_type", in.Type),
		logger.UserID(adminUserID),
	)
	return nil
}

func (s *warrantyService) ListEvents(ctx context.Context, warrantyID int64) ([]dto.EventResponse, error) {
	if _, err := s.deps.Warranties.GetByID(ctx, warrantyID); err != nil {
		return nil, err
	}
	events, err := s.deps.Warranties.ListEvents(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	return toEventResponses(events), nil
}

func (s *warrantyService) ProcessRefund(ctx context.Context, adminUserID int64, refundEventID string, in dto.RefundRequest) (*dto.RefundResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("admin.ProcessRefund"),
		logger.WarrantyID(in.WarrantyID),
	)

	if !types.ValidReason(in.Reason) {
		return nil, ErrReasonTooShort
	}

	w, err := s.deps.Warranties.GetByID(ctx, in.WarrantyID)
	if err != nil {
		return nil, err
	}
	if !w.Status.CanRefund() {
		switch w.Status {
		case types.StatusRevoked:
			return nil, ErrAlreadyRefunded
		case types.StatusActive:
			return nil, ErrActiveCannotRefund
		default:
			return nil, ErrInvalidStatus
		}
	}

	res, err := s.deps.Warranties.ProcessRefund(ctx, repository.RefundInput{
		WarrantyID:    in.WarrantyID,
		AdminUserID:   adminUserID,
		Reason:        in.Reason,
		RefundEventID: refundEventID,
	})
	if err != nil {
		if repository.IsStaleState(err) {
			metrics.StaleStateConflicts.Inc()
			metrics.RefundsProcessed.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	if res.AlreadyProcessed {
		metrics.RefundsProcessed.WithLabelValues("replayed").Inc()
		log.Info("refund replayed", logger.String("refund_event_id", refundEventID))
	} else {
		metrics.RefundsProcessed.WithLabelValues("processed").Inc()
		metrics.WarrantyTransitions.WithLabelValues(string(w.Status), string(types.StatusRevoked)).Inc()
		log.Info("refund processed",
			logger.String("refund_event_id", refundEventID),
			logger.UserID(adminUserID),
		)
	}

	out := &dto.RefundResponse{
		AlreadyProcessed: res.AlreadyProcessed,
		CreditNoteID:     res.CreditNoteID,
		OrderID:          res.OrderID,
	}
	if res.NewOrderStatus != "" {
		out.OrderStatus = string(res.NewOrderStatus)
	}
	return out, nil
}

func toEventResponses(events []repository.WarrantyEvent) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventResponse{
			EventID:     e.EventID,
			EventType:   string(e.EventType),
			OldValue:    rawToAny(e.OldValue),
			NewValue:    rawToAny(e.NewValue),
			ChangedBy:   e.ChangedBy,
			ChangedByID: e.ChangedByID,
			Reason:      e.Reason,
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// rawToAny decodifica el JSON crudo del evento para no re-escapar en la
// respuesta. Payload roto sale como string.
func rawToAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
