package verify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	"github.com/dropDatabas3/prepmood/internal/http/services/verify"
)

type fakeTokenRepo struct {
	repository.TokenRepository

	token   *repository.TokenMaster
	scanErr error
	scans   []string
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, token string) (*repository.TokenMaster, error) {
	if f.token == nil || f.token.Token != token {
		return nil, repository.ErrNotFound
	}
	return f.token, nil
}

func (f *fakeTokenRepo) RecordScan(_ context.Context, token, _, _ string) error {
	f.scans = append(f.scans, token)
	return f.scanErr
}

type fakeWarrantyByToken struct {
	repository.WarrantyRepository

	warranty *repository.Warranty
}

func (f *fakeWarrantyByToken) GetByToken(_ context.Context, token string) (*repository.Warranty, error) {
	if f.warranty == nil || f.warranty.Token != token {
		return nil, repository.ErrNotFound
	}
	return f.warranty, nil
}

func TestVerify_UnknownTokenIsNotAnError(t *testing.T) {
	svc := verify.New(verify.Deps{Tokens: &fakeTokenRepo{}, Warranties: &fakeWarrantyByToken{}})

	out, err := svc.Verify(context.Background(), "PM-NOPE", "1.2.3.4", "curl")
	require.NoError(t, err)
	require.False(t, out.Genuine)
	require.False(t, out.Blocked)
}

func TestVerify_BlockedToken(t *testing.T) {
	tokens := &fakeTokenRepo{token: &repository.TokenMaster{Token: "PM-AAA", IsBlocked: true, ProductName: "Prep Hoodie"}}
	svc := verify.New(verify.Deps{Tokens: tokens, Warranties: &fakeWarrantyByToken{}})

	out, err := svc.Verify(context.Background(), "PM-AAA", "1.2.3.4", "curl")
	require.NoError(t, err)
	require.False(t, out.Genuine)
	require.True(t, out.Blocked)
	require.Empty(t, out.ProductName, "a blocked token must not leak product info")
	require.Equal(t, []string{"PM-AAA"}, tokens.scans, "blocked scans still get logged")
}

func TestVerify_GenuineWithWarranty(t *testing.T) {
	tokens := &fakeTokenRepo{token: &repository.TokenMaster{Token: "PM-AAA", ProductName: "Prep Hoodie", ScanCount: 4}}
	warranties := &fakeWarrantyByToken{warranty: &repository.Warranty{Token: "PM-AAA", Status: types.StatusActive}}
	svc := verify.New(verify.Deps{Tokens: tokens, Warranties: warranties})

	out, err := svc.Verify(context.Background(), "PM-AAA", "1.2.3.4", "curl")
	require.NoError(t, err)
	require.True(t, out.Genuine)
	require.Equal(t, "Prep Hoodie", out.ProductName)
	require.Equal(t, int64(5), out.ScanCount, "response counts the scan being served")
	require.NotNil(t, out.WarrantyStatus)
	require.Equal(t, "active", *out.WarrantyStatus)
}

func TestVerify_ScanLogFailureDoesNotBlock(t *testing.T) {
	tokens := &fakeTokenRepo{
		token:   &repository.TokenMaster{Token: "PM-AAA", ProductName: "Prep Hoodie"},
		scanErr: errors.New("disk full"),
	}
	svc := verify.New(verify.Deps{Tokens: tokens, Warranties: &fakeWarrantyByToken{}})

	out, err := svc.Verify(context.Background(), "PM-AAA", "1.2.3.4", "curl")
	require.NoError(t, err)
	require.True(t, out.Genuine)
}
