package admin

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/inquiries"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/inquiries"
)

// InquiriesController maneja la consola admin de consultas.
type InquiriesController struct {
	service svc.Service
}

// NewInquiriesController crea el controller admin de consultas.
func NewInquiriesController(service svc.Service) *InquiriesController {
	return &InquiriesController{service: service}
}

// List maneja GET /api/admin/inquiries?status=&query=&limit=&offset=.
func (c *InquiriesController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := helpers.QueryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := helpers.QueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	resp, err := c.service.List(r.Context(), q.Get("status"), q.Get("query"), limit, offset)
	if err != nil {
		writeInquiryError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Get maneja GET /api/admin/inquiries/{id}.
func (c *InquiriesController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeInquiryError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Stats maneja GET /api/admin/inquiries/stats.
func (c *InquiriesController) Stats(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.Stats(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Reply maneja POST /api/admin/inquiries/{id}/reply.
func (c *InquiriesController) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := middlewares.GetSession(ctx)

	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.ReplyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	resp, err := c.service.Reply(ctx, id, s.UserID, req)
	if err != nil {
		writeInquiryError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}

// SetStatus maneja PUT /api/admin/inquiries/{id}/status.
func (c *InquiriesController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.SetStatus(r.Context(), id, req); err != nil {
		writeInquiryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMemo maneja PUT /api/admin/inquiries/{id}/memo.
func (c *InquiriesController) SetMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.MemoRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.SetMemo(r.Context(), id, req); err != nil {
		writeInquiryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeInquiryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidStatus):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("invalid inquiry status"))
	case errors.Is(err, svc.ErrEmptyReply):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("reply body is required"))
	default:
		httperrors.WriteError(w, err)
	}
}
