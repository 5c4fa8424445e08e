// Command service arranca el backend REST del storefront y la consola
// de administración.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/prepmood/internal/cache"
	"github.com/dropDatabas3/prepmood/internal/config"
	"github.com/dropDatabas3/prepmood/internal/email"
	adminctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/auth"
	catalogctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/catalog"
	healthctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/health"
	inquiriesctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/inquiries"
	ordersctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/orders"
	verifyctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/verify"
	warrantiesctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/warranties"
	mw "github.com/dropDatabas3/prepmood/internal/http/middlewares"
	"github.com/dropDatabas3/prepmood/internal/http/router"
	adminsvc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
	authsvc "github.com/dropDatabas3/prepmood/internal/http/services/auth"
	catalogsvc "github.com/dropDatabas3/prepmood/internal/http/services/catalog"
	inquiriessvc "github.com/dropDatabas3/prepmood/internal/http/services/inquiries"
	orderssvc "github.com/dropDatabas3/prepmood/internal/http/services/orders"
	verifysvc "github.com/dropDatabas3/prepmood/internal/http/services/verify"
	warrantiessvc "github.com/dropDatabas3/prepmood/internal/http/services/warranties"
	"github.com/dropDatabas3/prepmood/internal/metrics"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
	"github.com/dropDatabas3/prepmood/internal/payment"
	"github.com/dropDatabas3/prepmood/internal/rate"
	"github.com/dropDatabas3/prepmood/internal/security/session"
	"github.com/dropDatabas3/prepmood/internal/store/pg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to YAML config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "prepmood-service",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		MinConns:        cfg.Storage.Postgres.MinConns,
		ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 0),
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer store.Close()

	// Cache + rate limiters. Con Redis los contadores se comparten entre
	// instancias; con memory quedan por proceso.
	var (
		cacheClient cache.Client
		newLimiter  func(max int, window time.Duration) mw.RateLimiter
	)
	if strings.EqualFold(cfg.Cache.Kind, "redis") {
		rc, err := cache.NewRedis(cache.Config{
			Driver:   "redis",
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		cacheClient = rc
		newLimiter = func(max int, window time.Duration) mw.RateLimiter {
			return limiterAdapter{rate.NewRedisLimiter(rc.Raw(), "rl:", max, window)}
		}
	} else {
		cacheClient = cache.NewMemory(cfg.Cache.Redis.Prefix)
		newLimiter = func(max int, window time.Duration) mw.RateLimiter {
			return limiterAdapter{rate.NewMemoryLimiter(max, window)}
		}
	}
	defer cacheClient.Close()

	var globalLimiter, loginLimiter, transferLimiter, scanLimiter mw.RateLimiter
	if cfg.Rate.Enabled {
		globalLimiter = newLimiter(cfg.Rate.MaxRequests, config.Duration(cfg.Rate.Window, time.Minute))
		loginLimiter = newLimiter(cfg.Rate.Login.Limit, config.Duration(cfg.Rate.Login.Window, time.Minute))
		transferLimiter = newLimiter(cfg.Rate.Transfer.Limit, config.Duration(cfg.Rate.Transfer.Window, 10*time.Minute))
		scanLimiter = newLimiter(cfg.Rate.Scan.Limit, config.Duration(cfg.Rate.Scan.Window, time.Minute))
	}

	// Email
	var sender email.Sender = email.NopSender{}
	if cfg.Email.Enabled && cfg.SMTP.Host != "" {
		smtp := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		smtp.TLSMode = cfg.SMTP.TLS
		smtp.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = smtp
	}
	templates, err := email.LoadTemplates()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}

	// Payment gateway
	var gateway payment.Gateway
	switch cfg.Payment.Provider {
	case "stripe":
		gateway = payment.NewStripe(cfg.Payment.StripeKey)
	default:
		log.Warn("using fake payment gateway")
		gateway = payment.NewFake()
	}

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.Issuer, config.Duration(cfg.Session.TTL, 24*time.Hour))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics.Register(registry)

	// Services
	authService := authsvc.New(authsvc.Deps{Users: store.Users()})
	catalogService := catalogsvc.New(catalogsvc.Deps{
		Products: store.Products(),
		Cache:    cacheClient,
		TTL:      config.Duration(cfg.Cache.CatalogTTL, 5*time.Minute),
	})
	ordersService := orderssvc.New(orderssvc.Deps{
		Orders:   store.Orders(),
		Products: store.Products(),
		Gateway:  gateway,
		Currency: cfg.Payment.Currency,
	})
	warrantiesService := warrantiessvc.New(warrantiessvc.Deps{
		Warranties:  store.Warranties(),
		Transfers:   store.Transfers(),
		Users:       store.Users(),
		Sender:      sender,
		Templates:   templates,
		TransferTTL: config.Duration(cfg.Transfer.TTL, 72*time.Hour),
		BaseURL:     cfg.Email.BaseURL,
	})
	inquiriesService := inquiriessvc.New(inquiriessvc.Deps{Inquiries: store.Inquiries()})

	// Barrido horario de solicitudes de transferencia vencidas:
	// requested -> expired. Create y Accept ya chequean expires_at inline;
	// esto mantiene las filas históricas en su estado final.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.Transfers().ExpireStale(ctx)
				if err != nil {
					log.Warn("transfer_expire_sweep_err", logger.Err(err))
					continue
				}
				if n > 0 {
					log.Info("transfer requests expired", logger.Int("count", n))
				}
			}
		}
	}()
	verifyService := verifysvc.New(verifysvc.Deps{Tokens: store.Tokens(), Warranties: store.Warranties()})

	adminWarranties := adminsvc.NewWarrantyService(adminsvc.WarrantyDeps{
		Warranties: store.Warranties(),
		Users:      store.Users(),
	})
	adminStock := adminsvc.NewStockService(adminsvc.StockDeps{Stock: store.Stock()})
	adminTokens := adminsvc.NewTokenService(adminsvc.TokenDeps{Tokens: store.Tokens()})

	// Controllers + router
	sameSite := http.SameSiteLaxMode
	if strings.EqualFold(cfg.Session.SameSite, "strict") {
		sameSite = http.SameSiteStrictMode
	} else if strings.EqualFold(cfg.Session.SameSite, "none") {
		sameSite = http.SameSiteNoneMode
	}

	handler := router.New(router.Deps{
		Auth: authctrl.New(authService, sessions, authctrl.CookieConfig{
			Name:     cfg.Session.CookieName,
			Domain:   cfg.Session.Domain,
			SameSite: sameSite,
			Secure:   cfg.Session.Secure,
		}),
		Catalog:    catalogctrl.New(catalogService),
		Orders:     ordersctrl.New(ordersService),
		Warranties: warrantiesctrl.New(warrantiesService),
		Inquiries:  inquiriesctrl.New(inquiriesService),
		Verify:     verifyctrl.New(verifyService),
		Health:     healthctrl.New(store, cacheClient),
		Admin: adminctrl.NewControllers(adminctrl.Services{
			Warranties: adminWarranties,
			Stock:      adminStock,
			Tokens:     adminTokens,
			Inquiries:  inquiriesService,
		}),

		Sessions:    sessions,
		AdminAPIKey: cfg.Admin.APIKey,

		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,

		GlobalLimiter:   globalLimiter,
		LoginLimiter:    loginLimiter,
		TransferLimiter: transferLimiter,
		ScanLimiter:     scanLimiter,

		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 30*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// limiterAdapter adapta rate.Limiter a la interfaz de los middlewares.
type limiterAdapter struct {
	l rate.Limiter
}

func (a limiterAdapter) Allow(ctx context.Context, key string) (mw.RateLimitResult, error) {
	res, err := a.l.Allow(ctx, key)
	if err != nil {
		return mw.RateLimitResult{}, err
	}
	return mw.RateLimitResult{
		Allowed:     res.Allowed,
		Remaining:   res.Remaining,
		RetryAfter:  res.RetryAfter,
		WindowTTL:   res.WindowTTL,
		CurrentHits: res.CurrentHits,
	}, nil
}
