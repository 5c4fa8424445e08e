package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/prepmood/internal/http/errors"
	"github.com/dropDatabas3/prepmood/internal/security/session"
)

// SessionCookieName nombre de la cookie de sesión.
const SessionCookieName = "pm_session"

// extractToken busca el token de sesión: primero Authorization: Bearer,
// después la cookie.
func extractToken(r *http.Request) string {
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return strings.TrimSpace(ah[len("Bearer "):])
	}
	if ck, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// RequireAuth valida la sesión (cookie o Bearer) y la guarda en el
// contexto. Sin sesión válida responde 401.
func RequireAuth(mgr *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			claims, err := mgr.Parse(raw)
			if err != nil {
				errors.WriteError(w, errors.ErrSessionExpired)
				return
			}
			ctx := WithSession(r.Context(), &Session{
				UserID:  claims.UserID,
				Email:   claims.Email,
				IsAdmin: claims.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth intenta validar la sesión pero no falla si falta.
func OptionalAuth(mgr *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := mgr.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSession(r.Context(), &Session{
				UserID:  claims.UserID,
				Email:   claims.Email,
				IsAdmin: claims.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminConfig configura el guard de admin.
type AdminConfig struct {
	// APIKey habilita X-Admin-API-Key para el ops tooling (CLI watch).
	// Vacío = deshabilitado.
	APIKey string
}

// RequireAdmin exige una sesión con is_admin o, si está configurado, un
// X-Admin-API-Key válido. Debe usarse después de RequireAuth u
// OptionalAuth.
func RequireAdmin(cfg AdminConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.APIKey != "" {
				if key := strings.TrimSpace(r.Header.Get("X-Admin-API-Key")); key != "" {
					if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) == 1 {
						ctx := WithSession(r.Context(), &Session{IsAdmin: true, APIKey: true})
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
					errors.WriteError(w, errors.ErrForbidden.WithDetail("invalid api key"))
					return
				}
			}

			s := GetSession(r.Context())
			if s == nil {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if !s.IsAdmin {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
