// Package orders contiene los controllers de checkout y órdenes.
package orders

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/orders"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/orders"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Controller maneja las órdenes del storefront.
type Controller struct {
	service svc.Service
}

// New crea el controller de órdenes.
func New(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Create maneja POST /api/orders.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("orders.Create"))

	s := middlewares.GetSession(ctx)
	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.Create(ctx, s.UserID, req)
	if err != nil {
		log.Debug("order rejected", logger.Err(err))
		writeOrderError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}

// List maneja GET /api/orders.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := middlewares.GetSession(ctx)

	orders, err := c.service.List(ctx, s.UserID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Get maneja GET /api/orders/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := middlewares.GetSession(ctx)

	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.service.Get(ctx, id, s.UserID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Confirm maneja POST /api/payments/confirm: verifica el pago con el
// gateway, asigna stock y emite las garantías.
func (c *Controller) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("orders.Confirm"))

	s := middlewares.GetSession(ctx)
	var req dto.ConfirmRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.OrderID <= 0 || req.PaymentRef == "" {
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("order_id and payment_ref are required"))
		return
	}

	resp, err := c.service.Confirm(ctx, s.UserID, req)
	if err != nil {
		log.Warn("payment confirm failed", logger.Err(err))
		writeOrderError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrEmptyOrder):
		httperrors.WriteError(w, httperrors.ErrEmptyOrder)
	case errors.Is(err, svc.ErrNoShipping):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("shipping information is required"))
	case errors.Is(err, svc.ErrUnknownProduct):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("unknown product or option"))
	case errors.Is(err, svc.ErrOutOfStock):
		httperrors.WriteError(w, httperrors.ErrOutOfStock)
	case errors.Is(err, svc.ErrNotPaid):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("payment not completed"))
	default:
		httperrors.WriteError(w, err)
	}
}
