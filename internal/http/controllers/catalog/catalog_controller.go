// Package catalog contiene los controllers del catálogo público.
package catalog

import (
	"net/http"

	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/catalog"
)

// Controller maneja el catálogo de productos.
type Controller struct {
	service svc.Service
}

// New crea el controller de catálogo.
func New(service svc.Service) *Controller {
	return &Controller{service: service}
}

// List maneja GET /api/products.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	resp, err := c.service.List(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Get maneja GET /api/products/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParamInt64(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
