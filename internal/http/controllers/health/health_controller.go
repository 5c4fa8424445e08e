// Package health contiene los controllers de health check.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/prepmood/internal/cache"
	"github.com/dropDatabas3/prepmood/internal/http/helpers"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Pinger es lo mínimo que el readiness check necesita del store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller maneja liveness y readiness.
type Controller struct {
	store Pinger
	cache cache.Client
}

// New crea el controller de health.
func New(store Pinger, cacheClient cache.Client) *Controller {
	return &Controller{store: store, cache: cacheClient}
}

// Healthz maneja GET /healthz: el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz: el proceso puede atender tráfico. La DB es
// obligatoria; el cache degrada pero no tumba el readiness.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok", "cache": "ok"}

	if err := c.store.Ping(ctx); err != nil {
		logger.From(ctx).Error("readyz_db_err", logger.Err(err))
		checks["database"] = "unavailable"
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable", "checks": checks,
		})
		return
	}
	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			logger.From(ctx).Warn("readyz_cache_err", logger.Err(err))
			checks["cache"] = "degraded"
		}
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": checks})
}
