// Package auth contiene los controllers de cuentas y sesión.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/auth"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
	"github.com/dropDatabas3/prepmood/internal/security/session"
)

// CookieConfig atributos de las cookies de sesión.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite http.SameSite
	Secure   bool
}

// Controller maneja login, logout, registro y perfil.
type Controller struct {
	service  svc.Service
	sessions *session.Manager
	cookies  CookieConfig
}

// New crea el controller de cuentas.
func New(service svc.Service, sessions *session.Manager, cookies CookieConfig) *Controller {
	if cookies.Name == "" {
		cookies.Name = middlewares.SessionCookieName
	}
	return &Controller{service: service, sessions: sessions, cookies: cookies}
}

// Login maneja POST /api/auth/login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	user, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login rejected", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	tok, exp, err := c.sessions.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	c.setSessionCookies(w, tok, exp)

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		User:      toUserResponse(user),
		ExpiresAt: exp.UTC().Format(time.RFC3339),
	})
}

// Logout maneja POST /api/auth/logout. Siempre responde 204: borrar una
// cookie que no existe no es un error.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	c.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Register maneja POST /api/auth/register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Register"))

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	user, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register rejected", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Me maneja GET /api/auth/me.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s := middlewares.GetSession(ctx)
	if s == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	user, err := c.service.Me(ctx, s.UserID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// setSessionCookies emite la cookie de sesión (HttpOnly) y la cookie
// xsrf-token legible por JS para el double-submit de CSRF.
func (c *Controller) setSessionCookies(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookies.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.cookies.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.cookies.Secure,
		SameSite: c.cookies.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.CSRFCookieName,
		Value:    uuid.NewString(),
		Path:     "/",
		Domain:   c.cookies.Domain,
		Expires:  expires,
		HttpOnly: false,
		Secure:   c.cookies.Secure,
		SameSite: c.cookies.SameSite,
	})
}

func (c *Controller) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{c.cookies.Name, middlewares.CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.cookies.Domain,
			MaxAge:   -1,
			HttpOnly: name == c.cookies.Name,
			Secure:   c.cookies.Secure,
			SameSite: c.cookies.SameSite,
		})
	}
}

func toUserResponse(u *repository.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("email and password are required"))
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("email already registered"))
	case errors.Is(err, svc.ErrWeakPassword):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("password does not meet the minimum requirements"))
	default:
		httperrors.WriteError(w, err)
	}
}
