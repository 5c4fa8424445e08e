package warranties_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/warranties"
	"github.com/dropDatabas3/prepmood/internal/http/services/warranties"
)

// fakeWarrantyRepo sirve garantías desde un mapa y registra las
// transiciones pedidas.
type fakeWarrantyRepo struct {
	repository.WarrantyRepository // panic en métodos no esperados

	byPublicID map[string]*repository.Warranty
	byID       map[int64]*repository.Warranty
	activated  []int64
}

func (f *fakeWarrantyRepo) GetByPublicID(_ context.Context, publicID string) (*repository.Warranty, error) {
	if w, ok := f.byPublicID[publicID]; ok {
		return w, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWarrantyRepo) GetByID(_ context.Context, id int64) (*repository.Warranty, error) {
	if w, ok := f.byID[id]; ok {
		return w, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWarrantyRepo) Activate(_ context.Context, warrantyID, _ int64) error {
	f.activated = append(f.activated, warrantyID)
	return nil
}

type fakeTransferRepo struct {
	repository.TransferRepository

	live      *repository.WarrantyTransfer
	createErr error
	created   []repository.CreateTransferInput
	acceptErr error
	acceptLog *repository.TransferLog
}

func (f *fakeTransferRepo) GetLivePending(_ context.Context, warrantyID int64) (*repository.WarrantyTransfer, error) {
	if f.live != nil && f.live.WarrantyID == warrantyID {
		return f.live, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTransferRepo) Create(_ context.Context, input repository.CreateTransferInput) (*repository.WarrantyTransfer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	return &repository.WarrantyTransfer{
		ID:         99,
		WarrantyID: input.WarrantyID,
		FromUserID: input.FromUserID,
		ToEmail:    input.ToEmail,
		Code:       input.Code,
		Status:     types.TransferRequested,
		ExpiresAt:  input.ExpiresAt,
	}, nil
}

func (f *fakeTransferRepo) Accept(_ context.Context, _ repository.AcceptTransferInput) (*repository.TransferLog, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.acceptLog, nil
}

type fakeUserRepo struct {
	repository.UserRepository
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*repository.User, error) {
	return &repository.User{ID: id, Email: "owner@example.com", FirstName: "Ana"}, nil
}

func ownerPtr(id int64) *int64 { return &id }

func newService(wr *fakeWarrantyRepo, tr *fakeTransferRepo) warranties.Service {
	return warranties.New(warranties.Deps{
		Warranties:  wr,
		Transfers:   tr,
		Users:       &fakeUserRepo{},
		TransferTTL: time.Hour,
	})
}

func TestActivate(t *testing.T) {
	const publicID = "6f000000-0000-0000-0000-000000000001"
	ctx := context.Background()

	mkRepo := func(status types.WarrantyStatus, owner *int64) *fakeWarrantyRepo {
		return &fakeWarrantyRepo{byPublicID: map[string]*repository.Warranty{
			publicID: {ID: 10, PublicID: publicID, Status: status, OwnerUserID: owner},
		}}
	}

	t.Run("requires explicit agreement", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued, ownerPtr(7))
		err := newService(wr, &fakeTransferRepo{}).Activate(ctx, publicID, 7, false)
		require.ErrorIs(t, err, warranties.ErrAgreeRequired)
		require.Empty(t, wr.activated)
	})

	t.Run("only the owner can activate", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued, ownerPtr(7))
		err := newService(wr, &fakeTransferRepo{}).Activate(ctx, publicID, 8, true)
		require.ErrorIs(t, err, warranties.ErrNotOwner)
	})

	t.Run("only issued can activate", func(t *testing.T) {
		for _, status := range []types.WarrantyStatus{types.StatusActive, types.StatusSuspended, types.StatusRevoked} {
			wr := mkRepo(status, ownerPtr(7))
			err := newService(wr, &fakeTransferRepo{}).Activate(ctx, publicID, 7, true)
			require.ErrorIs(t, err, warranties.ErrInvalidStatus, "status %s", status)
		}
	})

	t.Run("happy path", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued, ownerPtr(7))
		err := newService(wr, &fakeTransferRepo{}).Activate(ctx, publicID, 7, true)
		require.NoError(t, err)
		require.Equal(t, []int64{10}, wr.activated)
	})
}

func TestCreateTransfer(t *testing.T) {
	const publicID = "6f000000-0000-0000-0000-000000000002"
	ctx := context.Background()

	mkRepo := func(status types.WarrantyStatus) *fakeWarrantyRepo {
		return &fakeWarrantyRepo{byPublicID: map[string]*repository.Warranty{
			publicID: {ID: 20, PublicID: publicID, Status: status, OwnerUserID: ownerPtr(7), ProductName: "Prep Hoodie"},
		}}
	}

	t.Run("rejects self transfer", func(t *testing.T) {
		svc := newService(mkRepo(types.StatusActive), &fakeTransferRepo{})
		_, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: "ME@example.com"})
		require.ErrorIs(t, err, warranties.ErrSelfTransfer)
	})

	t.Run("rejects garbage email", func(t *testing.T) {
		svc := newService(mkRepo(types.StatusActive), &fakeTransferRepo{})
		_, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: "not-an-email"})
		require.ErrorIs(t, err, warranties.ErrInvalidTransfer)
	})

	t.Run("only active can transfer", func(t *testing.T) {
		svc := newService(mkRepo(types.StatusIssued), &fakeTransferRepo{})
		_, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: "new@example.com"})
		require.ErrorIs(t, err, warranties.ErrInvalidStatus)
	})

	t.Run("live pending request is rejected before creating", func(t *testing.T) {
		tr := &fakeTransferRepo{live: &repository.WarrantyTransfer{
			ID:         44,
			WarrantyID: 20,
			Status:     types.TransferRequested,
			ExpiresAt:  time.Now().Add(time.Hour),
		}}
		svc := newService(mkRepo(types.StatusActive), tr)
		_, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: "new@example.com"})
		require.ErrorIs(t, err, warranties.ErrTransferExists)
		require.Empty(t, tr.created, "no new request should be inserted")
	})

	t.Run("create-time conflict maps to ErrTransferExists", func(t *testing.T) {
		tr := &fakeTransferRepo{createErr: repository.ErrConflict}
		svc := newService(mkRepo(types.StatusActive), tr)
		_, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: "new@example.com"})
		require.ErrorIs(t, err, warranties.ErrTransferExists)
	})

	t.Run("happy path masks the recipient and never leaks the code", func(t *testing.T) {
		tr := &fakeTransferRepo{}
		svc := newService(mkRepo(types.StatusActive), tr)
		out, err := svc.CreateTransfer(ctx, publicID, 7, "me@example.com", dto.TransferRequest{ToEmail: " New@Example.com "})
		require.NoError(t, err)
		require.Equal(t, int64(99), out.TransferID)
		require.NotEqual(t, "new@example.com", out.ToEmail, "recipient email must be masked")

		require.Len(t, tr.created, 1)
		require.Equal(t, "new@example.com", tr.created[0].ToEmail, "email should be normalized before storing")
		require.Len(t, tr.created[0].Code, 7)
		require.NotContains(t, out.ToEmail, tr.created[0].Code)
	})
}

func TestAcceptTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects malformed code without touching the repo", func(t *testing.T) {
		svc := newService(&fakeWarrantyRepo{}, &fakeTransferRepo{})
		for _, in := range []dto.AcceptRequest{
			{TransferID: 0, Code: "ABCDEF1"},
			{TransferID: 5, Code: "short"},
			{TransferID: 5, Code: ""},
		} {
			_, err := svc.AcceptTransfer(ctx, 8, "new@example.com", in)
			require.ErrorIs(t, err, warranties.ErrInvalidCode)
		}
	})

	t.Run("stale request maps to ErrInvalidTransfer", func(t *testing.T) {
		tr := &fakeTransferRepo{acceptErr: repository.ErrStaleState}
		svc := newService(&fakeWarrantyRepo{}, tr)
		_, err := svc.AcceptTransfer(ctx, 8, "new@example.com", dto.AcceptRequest{TransferID: 5, Code: "ABCDEF1"})
		require.ErrorIs(t, err, warranties.ErrInvalidTransfer)
	})

	t.Run("happy path lowercases nothing the repo needs and returns the warranty", func(t *testing.T) {
		wr := &fakeWarrantyRepo{byID: map[int64]*repository.Warranty{
			30: {ID: 30, PublicID: "6f000000-0000-0000-0000-000000000003", ProductName: "Prep Bottle", Status: types.StatusActive},
		}}
		tr := &fakeTransferRepo{acceptLog: &repository.TransferLog{WarrantyID: 30, FromUserID: 7, ToUserID: 8}}
		svc := newService(wr, tr)

		out, err := svc.AcceptTransfer(ctx, 8, "new@example.com", dto.AcceptRequest{TransferID: 5, Code: " abcdef1 "})
		require.NoError(t, err)
		require.Equal(t, "6f000000-0000-0000-0000-000000000003", out.WarrantyPublicID)
		require.Equal(t, "Prep Bottle", out.ProductName)
	})
}
