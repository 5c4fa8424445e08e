// Package verify implementa el chequeo público de autenticidad: el QR
// cosido al producto apunta acá. Cada consulta queda en scan_logs.
package verify

import (
	"context"
	"errors"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/verify"
	"github.com/dropDatabas3/prepmood/internal/metrics"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Service chequeo de token físico.
type Service interface {
	Verify(ctx context.Context, token, ip, userAgent string) (*dto.Response, error)
}

// Deps dependencias del service.
type Deps struct {
	Tokens     repository.TokenRepository
	Warranties repository.WarrantyRepository
}

type service struct {
	deps Deps
}

// New crea el service de verificación.
func New(deps Deps) Service {
	return &service{deps: deps}
}

// Verify busca el token y registra el escaneo. Un token desconocido no es
// un error: responde genuine=false para que el frontend muestre la
// advertencia de producto no reconocido.
func (s *service) Verify(ctx context.Context, token, ip, userAgent string) (*dto.Response, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("verify.Verify"))

	tm, err := s.deps.Tokens.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.TokenScans.WithLabelValues("not_found").Inc()
		log.Info("scan unknown token")
		return &dto.Response{Genuine: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if rerr := s.deps.Tokens.RecordScan(ctx, tm.Token, ip, userAgent); rerr != nil {
		// El registro del escaneo no bloquea la respuesta.
		log.Warn("scan_log_err", logger.Err(rerr))
	}

	if tm.IsBlocked {
		metrics.TokenScans.WithLabelValues("blocked").Inc()
		log.Info("scan blocked token", logger.Token(tm.Token))
		return &dto.Response{Genuine: false, Blocked: true}, nil
	}

	out := &dto.Response{
		Genuine:     true,
		ProductName: tm.ProductName,
		ScanCount:   tm.ScanCount + 1,
	}
	if w, werr := s.deps.Warranties.GetByToken(ctx, tm.Token); werr == nil {
		st := string(w.Status)
		out.WarrantyStatus = &st
	}
	metrics.TokenScans.WithLabelValues("ok").Inc()
	return out, nil
}
