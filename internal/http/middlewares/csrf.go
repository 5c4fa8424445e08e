package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/prepmood/internal/http/errors"
)

// CSRFCookieName cookie legible por JS para el double-submit. El login
// la emite junto con la cookie de sesión.
const CSRFCookieName = "xsrf-token"

// CSRFConfig configura el middleware CSRF.
type CSRFConfig struct {
	HeaderName string // Default: "X-XSRF-TOKEN"
	CookieName string // Default: CSRFCookieName
}

// WithCSRF aplica el check de double-submit para flujos con cookies.
// Comportamiento:
//   - Si Authorization: Bearer está presente, el check se salta (no es
//     flujo de cookies).
//   - Para métodos inseguros (POST, PUT, PATCH, DELETE), requiere header
//     y cookie con el mismo valor.
func WithCSRF(cfg CSRFConfig) Middleware {
	headerName := strings.TrimSpace(cfg.HeaderName)
	if headerName == "" {
		headerName = "X-XSRF-TOKEN"
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = CSRFCookieName
	}

	isUnsafe := func(m string) bool {
		switch strings.ToUpper(m) {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			return true
		default:
			return false
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isUnsafe(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if ah := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			// El API key del ops tooling tampoco es un flujo de cookies.
			if r.Header.Get("X-Admin-API-Key") != "" {
				next.ServeHTTP(w, r)
				return
			}

			hdr := strings.TrimSpace(r.Header.Get(headerName))
			ck, _ := r.Cookie(cookieName)

			if hdr == "" || ck == nil || strings.TrimSpace(ck.Value) == "" || !constantTimeEqual(hdr, ck.Value) {
				errors.WriteError(w, errors.ErrInvalidCSRF)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// constantTimeEqual compara dos strings en tiempo constante.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
