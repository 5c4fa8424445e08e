// Package admin contiene los controllers de la consola de
// administración.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

const maxIdempotencyKeyLen = 64

// WarrantiesController maneja las garantías y reembolsos del admin.
type WarrantiesController struct {
	service svc.WarrantyService
}

// NewWarrantiesController crea el controller admin de garantías.
func NewWarrantiesController(service svc.WarrantyService) *WarrantiesController {
	return &WarrantiesController{service: service}
}

// List maneja GET /api/admin/warranties?query=&status=&page=&per_page=.
func (c *WarrantiesController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := c.service.List(r.Context(),
		q.Get("query"), q.Get("status"),
		helpers.QueryInt(r, "page", 1), helpers.QueryInt(r, "per_page", 50),
	)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Detail maneja GET /api/admin/warranties/{id}.
func (c *WarrantiesController) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.service.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrWarrantyNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// ApplyEvent maneja POST /api/admin/warranties/{id}/events.
func (c *WarrantiesController) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("admin.ApplyEvent"))

	s := middlewares.GetSession(ctx)
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.ApplyEvent(ctx, id, s.UserID, req); err != nil {
		log.Debug("event rejected", logger.WarrantyID(id), logger.Err(err))
		writeAdminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents maneja GET /api/admin/warranties/{id}/events.
func (c *WarrantiesController) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	events, err := c.service.ListEvents(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrWarrantyNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ProcessRefund maneja POST /api/admin/refunds/process. El header
// Idempotency-Key (UUID, ≤64 chars) es obligatorio: repetir la misma key
// repite la respuesta original sin tocar nada.
func (c *WarrantiesController) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("admin.ProcessRefund"))

	s := middlewares.GetSession(ctx)

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		httperrors.WriteError(w, httperrors.ErrMissingIdempotencyKey)
		return
	}
	if len(key) > maxIdempotencyKeyLen {
		httperrors.WriteError(w, httperrors.ErrInvalidIdempotencyKey)
		return
	}
	if _, err := uuid.Parse(key); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidIdempotencyKey)
		return
	}

	var req dto.RefundRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.WarrantyID <= 0 {
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("warranty_id is required"))
		return
	}

	resp, err := c.service.ProcessRefund(ctx, s.UserID, key, req)
	if err != nil {
		log.Warn("refund rejected", logger.WarrantyID(req.WarrantyID), logger.Err(err))
		writeAdminError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// writeAdminError traduce los errores de los services admin al catálogo
// de códigos estructurados.
func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrReasonTooShort):
		httperrors.WriteError(w, httperrors.ErrReasonTooShort)
	case errors.Is(err, svc.ErrUnknownEventType):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("unknown event type"))
	case errors.Is(err, svc.ErrInvalidStatus):
		httperrors.WriteError(w, httperrors.ErrInvalidWarrantyStatus)
	case errors.Is(err, svc.ErrAlreadyRefunded):
		httperrors.WriteError(w, httperrors.ErrAlreadyRefunded)
	case errors.Is(err, svc.ErrActiveCannotRefund):
		httperrors.WriteError(w, httperrors.ErrActiveCannotRefund)
	case errors.Is(err, svc.ErrMissingOwner):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("new_owner_id is required"))
	case errors.Is(err, repository.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrWarrantyNotFound)
	default:
		httperrors.WriteError(w, err)
	}
}
