package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// ErrEmptyPatch indica un PATCH sin ningún cambio.
var ErrEmptyPatch = fmt.Errorf("empty token patch")

// TokenService operaciones admin sobre tokens físicos.
type TokenService interface {
	Create(ctx context.Context, in dto.TokenCreateRequest) (*dto.TokenResponse, error)
	Get(ctx context.Context, pk int64) (*dto.TokenResponse, error)
	Patch(ctx context.Context, pk int64, in dto.TokenPatchRequest) (*dto.TokenResponse, error)
	Search(ctx context.Context, term string) (*dto.TokenSearchResponse, error)
}

// TokenDeps dependencias del service de tokens.
type TokenDeps struct {
	Tokens repository.TokenRepository
}

type tokenService struct {
	deps TokenDeps
}

// NewTokenService crea el service admin de tokens.
func NewTokenService(deps TokenDeps) TokenService {
	return &tokenService{deps: deps}
}

func (s *tokenService) Create(ctx context.Context, in dto.TokenCreateRequest) (*dto.TokenResponse, error) {
	token := strings.TrimSpace(in.Token)
	name := strings.TrimSpace(in.ProductName)
	if token == "" || name == "" {
		return nil, repository.ErrInvalidInput
	}
	tm, err := s.deps.Tokens.Create(ctx, repository.CreateTokenInput{
		Token:        token,
		ProductName:  name,
		InternalCode: strings.TrimSpace(in.InternalCode),
	})
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("token created", logger.Token(tm.Token))
	resp := toTokenResponse(tm)
	return &resp, nil
}

func (s *tokenService) Get(ctx context.Context, pk int64) (*dto.TokenResponse, error) {
	tm, err := s.deps.Tokens.GetByPK(ctx, pk)
	if err != nil {
		return nil, err
	}
	resp := toTokenResponse(tm)
	return &resp, nil
}

func (s *tokenService) Patch(ctx context.Context, pk int64, in dto.TokenPatchRequest) (*dto.TokenResponse, error) {
	patch := repository.TokenPatch{
		IsBlocked:   in.IsBlocked,
		OwnerUserID: in.OwnerUserID,
		ClearOwner:  in.ClearOwner,
		ProductName: in.ProductName,
	}
	if patch.IsBlocked == nil && patch.OwnerUserID == nil && !patch.ClearOwner && patch.ProductName == nil {
		return nil, ErrEmptyPatch
	}
	tm, err := s.deps.Tokens.Patch(ctx, pk, patch)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("token patched", logger.Token(tm.Token))
	resp := toTokenResponse(tm)
	return &resp, nil
}

func (s *tokenService) Search(ctx context.Context, term string) (*dto.TokenSearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return &dto.TokenSearchResponse{Tokens: []dto.TokenSearchRow{}}, nil
	}
	rows, err := s.deps.Tokens.Search(ctx, term, 50)
	if err != nil {
		return nil, err
	}
	out := &dto.TokenSearchResponse{Tokens: make([]dto.TokenSearchRow, 0, len(rows))}
	for _, r := range rows {
		out.Tokens = append(out.Tokens, dto.TokenSearchRow{
			Token:          r.Token,
			ProductName:    r.ProductName,
			InternalCode:   r.InternalCode,
			IsBlocked:      r.IsBlocked,
			ScanCount:      r.ScanCount,
			WarrantyID:     r.WarrantyID,
			WarrantyStatus: r.WarrantyStatus,
			OwnerEmail:     r.OwnerEmail,
		})
	}
	return out, nil
}

func toTokenResponse(tm *repository.TokenMaster) dto.TokenResponse {
	return dto.TokenResponse{
		TokenPK:      tm.TokenPK,
		Token:        tm.Token,
		ProductName:  tm.ProductName,
		InternalCode: tm.InternalCode,
		OwnerUserID:  tm.OwnerUserID,
		IsBlocked:    tm.IsBlocked,
		ScanCount:    tm.ScanCount,
		CreatedAt:    tm.CreatedAt.UTC().Format(time.RFC3339),
	}
}
