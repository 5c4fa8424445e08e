// Package router arma el árbol de rutas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/auth"
	catalogctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/catalog"
	healthctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/health"
	inquiriesctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/inquiries"
	ordersctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/orders"
	verifyctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/verify"
	warrantiesctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/warranties"
	httperrors "github.com/dropDatabas3/prepmood/internal/http/errors"
	mw "github.com/dropDatabas3/prepmood/internal/http/middlewares"
	"github.com/dropDatabas3/prepmood/internal/security/session"
)

// Deps son las dependencias del router.
type Deps struct {
	Auth       *authctrl.Controller
	Catalog    *catalogctrl.Controller
	Orders     *ordersctrl.Controller
	Warranties *warrantiesctrl.Controller
	Inquiries  *inquiriesctrl.Controller
	Verify     *verifyctrl.Controller
	Health     *healthctrl.Controller
	Admin      *adminctrl.Controllers

	Sessions    *session.Manager
	AdminAPIKey string

	CORSAllowedOrigins []string

	// Limiters opcionales: nil desactiva el límite correspondiente.
	GlobalLimiter   mw.RateLimiter
	LoginLimiter    mw.RateLimiter
	TransferLimiter mw.RateLimiter
	ScanLimiter     mw.RateLimiter

	// MetricsHandler es el promhttp.Handler del registry del proceso.
	MetricsHandler http.Handler
}

// New construye el handler raíz con todas las rutas y middlewares.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSAllowedOrigins),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithRecover(),
	)
	if deps.GlobalLimiter != nil {
		r.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   deps.GlobalLimiter,
			KeyFunc:   mw.IPOnlyRateKey,
			Whitelist: []string{"/healthz", "/readyz", "/metrics"},
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound.WithDetail("method not allowed for this route"))
	})

	// Operacional, fuera de /api.
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	csrf := mw.WithCSRF(mw.CSRFConfig{})
	requireAuth := mw.RequireAuth(deps.Sessions)
	optionalAuth := mw.OptionalAuth(deps.Sessions)
	requireAdmin := mw.RequireAdmin(mw.AdminConfig{APIKey: deps.AdminAPIKey})

	r.Route("/api", func(api chi.Router) {
		// Auth: login y register quedan fuera del check CSRF (todavía no
		// hay cookie emitida) pero con su propio rate limit.
		api.Group(func(g chi.Router) {
			if deps.LoginLimiter != nil {
				g.Use(mw.WithRateLimit(mw.RateLimitConfig{
					Limiter: deps.LoginLimiter,
					KeyFunc: mw.IPPathRateKey,
				}))
			}
			g.Post("/auth/login", deps.Auth.Login)
			g.Post("/auth/register", deps.Auth.Register)
		})
		api.Group(func(g chi.Router) {
			g.Use(csrf)
			g.Post("/auth/logout", deps.Auth.Logout)
		})
		api.Group(func(g chi.Router) {
			g.Use(requireAuth)
			g.Get("/auth/me", deps.Auth.Me)
		})

		// Catálogo público.
		api.Get("/products", deps.Catalog.List)
		api.Get("/products/{id}", deps.Catalog.Get)

		// Verificación pública de tokens, rate limited por IP.
		api.Group(func(g chi.Router) {
			if deps.ScanLimiter != nil {
				g.Use(mw.WithRateLimit(mw.RateLimitConfig{
					Limiter: deps.ScanLimiter,
					KeyFunc: mw.IPOnlyRateKey,
				}))
			}
			g.Get("/verify/{token}", deps.Verify.Verify)
		})

		// Formulario de contacto: público, con sesión opcional.
		api.Group(func(g chi.Router) {
			g.Use(optionalAuth, csrf)
			g.Post("/inquiries", deps.Inquiries.Create)
		})

		// Storefront autenticado.
		api.Group(func(g chi.Router) {
			g.Use(requireAuth, csrf)

			g.Post("/orders", deps.Orders.Create)
			g.Get("/orders", deps.Orders.List)
			g.Get("/orders/{id}", deps.Orders.Get)
			g.Post("/payments/confirm", deps.Orders.Confirm)

			g.Get("/warranties/me", deps.Warranties.ListMine)
			g.Post("/warranties/{id}/activate", deps.Warranties.Activate)
			g.Post("/warranties/transfer/accept", deps.Warranties.Accept)

			g.Group(func(t chi.Router) {
				if deps.TransferLimiter != nil {
					t.Use(mw.WithRateLimit(mw.RateLimitConfig{
						Limiter: deps.TransferLimiter,
						KeyFunc: mw.IPPathRateKey,
					}))
				}
				t.Post("/warranties/{id}/transfer", deps.Warranties.Transfer)
			})
		})

		// Consola admin.
		api.Route("/admin", func(ad chi.Router) {
			ad.Use(optionalAuth, requireAdmin, csrf)

			ad.Get("/warranties", deps.Admin.Warranties.List)
			ad.Get("/warranties/{id}", deps.Admin.Warranties.Detail)
			ad.Post("/warranties/{id}/events", deps.Admin.Warranties.ApplyEvent)
			ad.Get("/warranties/{id}/events", deps.Admin.Warranties.ListEvents)
			ad.Post("/refunds/process", deps.Admin.Warranties.ProcessRefund)

			ad.Get("/inquiries", deps.Admin.Inquiries.List)
			ad.Get("/inquiries/stats", deps.Admin.Inquiries.Stats)
			ad.Get("/inquiries/{id}", deps.Admin.Inquiries.Get)
			ad.Post("/inquiries/{id}/reply", deps.Admin.Inquiries.Reply)
			ad.Put("/inquiries/{id}/status", deps.Admin.Inquiries.SetStatus)
			ad.Put("/inquiries/{id}/memo", deps.Admin.Inquiries.SetMemo)

			ad.Get("/stock", deps.Admin.Stock.List)
			ad.Get("/stock/stats", deps.Admin.Stock.Stats)
			ad.Post("/stock", deps.Admin.Stock.Create)
			ad.Post("/stock/{id}/correct", deps.Admin.Stock.Correct)

			ad.Get("/tokens", deps.Admin.Tokens.Search)
			ad.Post("/tokens", deps.Admin.Tokens.Create)
			ad.Get("/tokens/{pk}", deps.Admin.Tokens.Get)
			ad.Patch("/tokens/{pk}", deps.Admin.Tokens.Patch)
		})
	})

	return r
}
