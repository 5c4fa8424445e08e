package middlewares

import "context"

type ctxKey string

const (
	ctxSessionKey   ctxKey = "session"
	ctxRequestIDKey ctxKey = "request_id"
)

// Session es la identidad autenticada del request.
type Session struct {
	UserID  int64
	Email   string
	IsAdmin bool
	// APIKey indica que la autenticación fue por X-Admin-API-Key (ops
	// tooling), no por sesión de usuario.
	APIKey bool
}

// WithSession inyecta la sesión en el contexto.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, s)
}

// GetSession obtiene la sesión del contexto, nil si no hay.
func GetSession(ctx context.Context) *Session {
	if v := ctx.Value(ctxSessionKey); v != nil {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto, vacío si no hay.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
