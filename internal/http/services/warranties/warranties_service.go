// Package warranties implementa el flujo de garantías del storefront:
// listado del dueño, activación y transferencia con código por mail.
package warranties

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/warranties"
	"github.com/dropDatabas3/prepmood/internal/email"
	"github.com/dropDatabas3/prepmood/internal/metrics"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
	"github.com/dropDatabas3/prepmood/internal/security/transfercode"
	"github.com/dropDatabas3/prepmood/internal/util"
)

// Errores del flujo de garantías.
var (
	ErrAgreeRequired   = fmt.Errorf("explicit agreement required")
	ErrNotOwner        = fmt.Errorf("caller does not own the warranty")
	ErrInvalidStatus   = fmt.Errorf("warranty status does not allow the operation")
	ErrTransferExists  = fmt.Errorf("a live transfer request already exists")
	ErrSelfTransfer    = fmt.Errorf("cannot transfer to the current owner")
	ErrInvalidCode     = fmt.Errorf("invalid transfer code")
	ErrInvalidTransfer = fmt.Errorf("transfer request is no longer valid")
)

// Service define el flujo de garantías del usuario final.
type Service interface {
	ListMine(ctx context.Context, userID int64) (*dto.ListResponse, error)
	Activate(ctx context.Context, publicID string, userID int64, agree bool) error
	CreateTransfer(ctx context.Context, publicID string, userID int64, userEmail string, in dto.TransferRequest) (*dto.TransferResponse, error)
	AcceptTransfer(ctx context.Context, userID int64, userEmail string, in dto.AcceptRequest) (*dto.AcceptResponse, error)
}

// Deps dependencias del service.
type Deps struct {
	Warranties  repository.WarrantyRepository
	Transfers   repository.TransferRepository
	Users       repository.UserRepository
	Sender      email.Sender
	Templates   *email.Templates
	TransferTTL time.Duration
	BaseURL     string
}

type service struct {
	deps Deps
}

// New crea el service. TTL cero usa 72h.
func New(deps Deps) Service {
	if deps.TransferTTL <= 0 {
		deps.TransferTTL = 72 * time.Hour
	}
	return &service{deps: deps}
}

func (s *service) ListMine(ctx context.Context, userID int64) (*dto.ListResponse, error) {
	ws, err := s.deps.Warranties.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse{Warranties: make([]dto.WarrantyResponse, 0, len(ws))}
	for i := range ws {
		out.Warranties = append(out.Warranties, toWarrantyResponse(&ws[i]))
	}
	return out, nil
}

func (s *service) Activate(ctx context.Context, publicID string, userID int64, agree bool) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("warranties.Activate"))

	if !agree {
		return ErrAgreeRequired
	}
	w, err := s.deps.Warranties.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if w.OwnerUserID == nil || *w.OwnerUserID != userID {
		return ErrNotOwner
	}
	if !w.Status.CanActivate() {
		return ErrInvalidStatus
	}

	if err := s.deps.Warranties.Activate(ctx, w.ID, userID); err != nil {
		return err
	}
	metrics.WarrantyTransitions.WithLabelValues(string(types.StatusIssued), string(types.StatusActive)).Inc()
	log.Info("warranty activated", logger.WarrantyID(w.ID), logger.UserID(userID))
	return nil
}

func (s *service) CreateTransfer(ctx context.Context, publicID string, userID int64, userEmail string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("warranties.CreateTransfer"))

	toEmail := strings.TrimSpace(strings.ToLower(in.ToEmail))
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return nil, ErrInvalidTransfer
	}
	if strings.EqualFold(toEmail, userEmail) {
		return nil, ErrSelfTransfer
	}

	w, err := s.deps.Warranties.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if w.OwnerUserID == nil || *w.OwnerUserID != userID {
		return nil, ErrNotOwner
	}
	if !w.Status.CanTransfer() {
		return nil, ErrInvalidStatus
	}

	// Chequeo temprano de solicitud viva; Create lo repite bajo FOR UPDATE
	// para cerrar la carrera.
	if _, err := s.deps.Transfers.GetLivePending(ctx, w.ID); err == nil {
		return nil, ErrTransferExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	code, err := transfercode.New()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.deps.TransferTTL)

	t, err := s.deps.Transfers.Create(ctx, repository.CreateTransferInput{
		WarrantyID: w.ID,
		FromUserID: userID,
		ToEmail:    toEmail,
		Code:       code,
		ExpiresAt:  expiresAt,
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrTransferExists
	}
	if err != nil {
		return nil, err
	}

	s.sendInvite(ctx, w, t, userID)
	metrics.TransfersCreated.Inc()
	log.Info("transfer requested",
		logger.WarrantyID(w.ID),
		logger.TransferID(t.ID),
		logger.UserID(userID),
	)

	return &dto.TransferResponse{
		TransferID: t.ID,
		ToEmail:    util.MaskEmail(t.ToEmail),
		ExpiresAt:  t.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// sendInvite manda el código al destinatario. Best effort: la solicitud
// ya está persistida y el admin puede reenviar el código.
func (s *service) sendInvite(ctx context.Context, w *repository.Warranty, t *repository.WarrantyTransfer, fromUserID int64) {
	if s.deps.Sender == nil || s.deps.Templates == nil {
		return
	}
	fromName := "The previous owner"
	if u, err := s.deps.Users.GetByID(ctx, fromUserID); err == nil && u.FullName() != "" {
		fromName = u.FullName()
	}
	acceptURL := ""
	if s.deps.BaseURL != "" {
		acceptURL = strings.TrimRight(s.deps.BaseURL, "/") + "/warranty/transfer/accept"
	}
	htmlBody, textBody, err := s.deps.Templates.RenderInvite(email.TransferInviteVars{
		FromName:    fromName,
		ProductName: w.ProductName,
		Code:        t.Code,
		ExpiresAt:   t.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
		AcceptURL:   acceptURL,
	})
	if err != nil {
		logger.From(ctx).Error("transfer_invite_render_err", logger.Err(err))
		return
	}
	if err := s.deps.Sender.Send(ctx, t.ToEmail, "Warranty transfer for "+w.ProductName, htmlBody, textBody); err != nil {
		logger.From(ctx).Error("transfer_invite_send_err", logger.TransferID(t.ID), logger.Err(err))
	}
}

func (s *service) AcceptTransfer(ctx context.Context, userID int64, userEmail string, in dto.AcceptRequest) (*dto.AcceptResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("warranties.AcceptTransfer"))

	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if in.TransferID <= 0 || !transfercode.Valid(code) {
		return nil, ErrInvalidCode
	}

	tlog, err := s.deps.Transfers.Accept(ctx, repository.AcceptTransferInput{
		TransferID:  in.TransferID,
		Code:        code,
		CallerID:    userID,
		CallerEmail: userEmail,
	})
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return nil, ErrInvalidCode
	case errors.Is(err, repository.ErrStaleState):
		return nil, ErrInvalidTransfer
	case err != nil:
		return nil, err
	}

	w, err := s.deps.Warranties.GetByID(ctx, tlog.WarrantyID)
	if err != nil {
		return nil, err
	}

	s.notifyCompleted(ctx, w, tlog, userEmail)
	metrics.TransfersAccepted.Inc()
	log.Info("transfer accepted",
		logger.WarrantyID(w.ID),
		logger.TransferID(in.TransferID),
		logger.UserID(userID),
	)

	return &dto.AcceptResponse{
		WarrantyPublicID: w.PublicID,
		ProductName:      w.ProductName,
	}, nil
}

// notifyCompleted avisa al dueño anterior. Best effort.
func (s *service) notifyCompleted(ctx context.Context, w *repository.Warranty, tlog *repository.TransferLog, toEmail string) {
	if s.deps.Sender == nil || s.deps.Templates == nil {
		return
	}
	prev, err := s.deps.Users.GetByID(ctx, tlog.FromUserID)
	if err != nil {
		return
	}
	htmlBody, textBody, err := s.deps.Templates.RenderCompleted(email.TransferCompletedVars{
		ProductName: w.ProductName,
		ToEmail:     util.MaskEmail(toEmail),
		CompletedAt: time.Now().UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return
	}
	if err := s.deps.Sender.Send(ctx, prev.Email, "Your warranty was transferred", htmlBody, textBody); err != nil {
		logger.From(ctx).Warn("transfer_notify_send_err", logger.Err(err))
	}
}

func toWarrantyResponse(w *repository.Warranty) dto.WarrantyResponse {
	out := dto.WarrantyResponse{
		PublicID:     w.PublicID,
		Token:        util.MaskToken(w.Token),
		Status:       string(w.Status),
		ProductName:  w.ProductName,
		SerialNumber: w.SerialNumber,
		CreatedAt:    w.CreatedAt.UTC().Format(time.RFC3339),
	}
	if w.ActivatedAt != nil {
		s := w.ActivatedAt.UTC().Format(time.RFC3339)
		out.ActivatedAt = &s
	}
	return out
}
