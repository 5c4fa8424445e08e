// Package warranties contiene los controllers de garantías del
// storefront: listado del dueño, activación y transferencia.
package warranties

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/warranties"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/warranties"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Controller maneja las garantías del usuario final.
type Controller struct {
	service svc.Service
}

// New crea el controller de garantías.
func New(service svc.Service) *Controller {
	return &Controller{service: service}
}

// ListMine maneja GET /api/warranties/me.
func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := middlewares.GetSession(ctx)

	resp, err := c.service.ListMine(ctx, s.UserID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Activate maneja POST /api/warranties/{id}/activate. {id} es el
// public_id (uuid), nunca el id interno.
func (c *Controller) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("warranties.Activate"))

	s := middlewares.GetSession(ctx)
	publicID := chi.URLParam(r, "id")
	var req dto.ActivateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Activate(ctx, publicID, s.UserID, req.Agree); err != nil {
		log.Debug("activation rejected", logger.Err(err))
		writeWarrantyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transfer maneja POST /api/warranties/{id}/transfer.
func (c *Controller) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("warranties.Transfer"))

	s := middlewares.GetSession(ctx)
	publicID := chi.URLParam(r, "id")
	var req dto.TransferRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.CreateTransfer(ctx, publicID, s.UserID, s.Email, req)
	if err != nil {
		log.Debug("transfer rejected", logger.Err(err))
		writeWarrantyError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}

// Accept maneja POST /api/warranties/transfer/accept.
func (c *Controller) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("warranties.Accept"))

	s := middlewares.GetSession(ctx)
	var req dto.AcceptRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.AcceptTransfer(ctx, s.UserID, s.Email, req)
	if err != nil {
		log.Debug("accept rejected", logger.Err(err))
		writeWarrantyError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeWarrantyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrAgreeRequired):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("agree must be true"))
	case errors.Is(err, svc.ErrNotOwner):
		httperrors.WriteError(w, httperrors.ErrNotOwner)
	case errors.Is(err, svc.ErrInvalidStatus):
		httperrors.WriteError(w, httperrors.ErrInvalidWarrantyStatus)
	case errors.Is(err, svc.ErrTransferExists):
		httperrors.WriteError(w, httperrors.ErrTransferAlreadyExists)
	case errors.Is(err, svc.ErrSelfTransfer):
		httperrors.WriteError(w, httperrors.ErrInvalidTransferRequest.WithDetail("cannot transfer to the current owner"))
	case errors.Is(err, svc.ErrInvalidCode):
		httperrors.WriteError(w, httperrors.ErrInvalidTransferCode)
	case errors.Is(err, svc.ErrInvalidTransfer):
		httperrors.WriteError(w, httperrors.ErrInvalidTransferCode)
	default:
		httperrors.WriteError(w, err)
	}
}
