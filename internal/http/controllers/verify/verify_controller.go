// Package verify contiene el controller público del chequeo de
// autenticidad de tokens físicos.
package verify

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/verify"
)

// Controller maneja el escaneo público de tokens.
type Controller struct {
	service svc.Service
}

// New crea el controller de verificación.
func New(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Verify maneja GET /api/verify/{token}.
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" || len(token) > 128 {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("token is required"))
		return
	}

	resp, err := c.service.Verify(r.Context(), token, clientIP(r), r.UserAgent())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
