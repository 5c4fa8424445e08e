// Package auth implementa login, registro y sesión.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/auth"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
	"github.com/dropDatabas3/prepmood/internal/security/password"
)

// Errores del flujo de sesión.
var (
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrEmailTaken         = fmt.Errorf("email already registered")
	ErrWeakPassword       = fmt.Errorf("password too weak")
)

// Service define el flujo de cuentas.
type Service interface {
	Login(ctx context.Context, in dto.LoginRequest) (*repository.User, error)
	Register(ctx context.Context, in dto.RegisterRequest) (*repository.User, error)
	Me(ctx context.Context, userID int64) (*repository.User, error)
}

// Deps dependencias del service.
type Deps struct {
	Users  repository.UserRepository
	Policy password.Policy
}

type service struct {
	deps Deps
}

// New crea el service de cuentas.
func New(deps Deps) Service {
	if deps.Policy.MinLength == 0 {
		deps.Policy.MinLength = 10
	}
	return &service{deps: deps}
}

func (s *service) Login(ctx context.Context, in dto.LoginRequest) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.Login"))

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		log.Debug("user not found")
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(in.Password, user.PasswordHash) {
		log.Debug("password check failed", logger.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}

	log.Info("login successful", logger.UserID(user.ID))
	return user, nil
}

func (s *service) Register(ctx context.Context, in dto.RegisterRequest) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.Register"))

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" || !strings.Contains(email, "@") {
		return nil, ErrMissingFields
	}
	if ok, _ := s.deps.Policy.Validate(in.Password); !ok {
		return nil, ErrWeakPassword
	}

	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info("account created", logger.UserID(user.ID))
	return user, nil
}

func (s *service) Me(ctx context.Context, userID int64) (*repository.User, error) {
	return s.deps.Users.GetByID(ctx, userID)
}
