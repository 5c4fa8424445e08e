// Package pg implementa los repositorios de dominio sobre PostgreSQL
// usando pgxpool directamente.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Store agrupa el pool y los repositorios concretos.
type Store struct {
	pool *pgxpool.Pool

	warranties *warrantyRepo
	transfers  *transferRepo
	tokens     *tokenRepo
	orders     *orderRepo
	stock      *stockRepo
	inquiries  *inquiryRepo
	products   *productRepo
	users      *userRepo
}

// Tuning parámetros opcionales del pool.
type Tuning struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// New crea el pool y los repositorios. El ping inicial es best-effort:
// la app puede arrancar con la DB caída y recuperarse sola.
func New(ctx context.Context, dsn string, tuning Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if tuning.MaxConns > 0 {
		pcfg.MaxConns = int32(tuning.MaxConns)
	}
	if tuning.MinConns > 0 {
		pcfg.MinConns = int32(tuning.MinConns)
	}
	if tuning.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = tuning.ConnMaxLifetime
		pcfg.MaxConnIdleTime = tuning.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		logger.L().Warn("pg_pool_startup_ping_failed", logger.Err(err))
	} else {
		logger.L().Info("pg_pool_ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	s := &Store{pool: pool}
	s.warranties = &warrantyRepo{pool: pool}
	s.transfers = &transferRepo{pool: pool}
	s.tokens = &tokenRepo{pool: pool}
	s.orders = &orderRepo{pool: pool}
	s.stock = &stockRepo{pool: pool}
	s.inquiries = &inquiryRepo{pool: pool}
	s.products = &productRepo{pool: pool}
	s.users = &userRepo{pool: pool}
	return s, nil
}

// Pool expone el pool interno (métricas, migraciones, seed).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats snapshot del estado del pool, nil si no hay pool.
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Ping verifica conectividad.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Accessors de repositorios.

func (s *Store) Warranties() repository.WarrantyRepository { return s.warranties }
func (s *Store) Transfers() repository.TransferRepository  { return s.transfers }
func (s *Store) Tokens() repository.TokenRepository        { return s.tokens }
func (s *Store) Orders() repository.OrderRepository        { return s.orders }
func (s *Store) Stock() repository.StockRepository         { return s.stock }
func (s *Store) Inquiries() repository.InquiryRepository   { return s.inquiries }
func (s *Store) Products() repository.ProductRepository    { return s.products }
func (s *Store) Users() repository.UserRepository          { return s.users }

// isUniqueViolation detecta el SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// nullIfEmpty retorna nil si el string está vacío, útil para columnas
// opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
