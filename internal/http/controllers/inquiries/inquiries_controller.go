// Package inquiries contiene el controller público del formulario de
// contacto. La consola admin vive en controllers/admin.
package inquiries

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/inquiries"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/inquiries"
)

// Controller maneja el formulario público de contacto.
type Controller struct {
	service svc.Service
}

// New crea el controller de consultas.
func New(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Create maneja POST /api/inquiries. No requiere sesión; si hay una, la
// consulta queda asociada al usuario.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	var userID *int64
	if s := middlewares.GetSession(ctx); s != nil && s.UserID > 0 {
		userID = &s.UserID
	}

	resp, err := c.service.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, svc.ErrMissingFields) {
			httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("name, email, subject and message are required"))
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, resp)
}
