package admin

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
)

// TokensController maneja el registro maestro de tokens físicos.
type TokensController struct {
	service svc.TokenService
}

// NewTokensController crea el controller admin de tokens.
func NewTokensController(service svc.TokenService) *TokensController {
	return &TokensController{service: service}
}

// Create maneja POST /api/admin/tokens.
func (c *TokensController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenCreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	resp, err := c.service.Create(r.Context(), req)
	if err != nil {
		writeTokenError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}

// Get maneja GET /api/admin/tokens/{pk}.
func (c *TokensController) Get(w http.ResponseWriter, r *http.Request) {
	pk, ok := helpers.ParamInt64(w, r, "pk")
	if !ok {
		return
	}
	resp, err := c.service.Get(r.Context(), pk)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Patch maneja PATCH /api/admin/tokens/{pk}: block/unblock y
// reasignación de dueño.
func (c *TokensController) Patch(w http.ResponseWriter, r *http.Request) {
	pk, ok := helpers.ParamInt64(w, r, "pk")
	if !ok {
		return
	}
	var req dto.TokenPatchRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	resp, err := c.service.Patch(r.Context(), pk, req)
	if err != nil {
		writeTokenError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Search maneja GET /api/admin/tokens?search=.
func (c *TokensController) Search(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrEmptyPatch):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("the patch has no changes"))
	default:
		httperrors.WriteError(w, err)
	}
}
