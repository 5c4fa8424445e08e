package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	"github.com/dropDatabas3/prepmood/internal/http/services/admin"
)

const validReason = "customer asked for it in writing"

type fakeAdminWarrantyRepo struct {
	repository.WarrantyRepository

	warranty *repository.Warranty

	suspended   int
	unsuspended int
	ownerChange []int64

	refundResult *repository.RefundResult
	refundErr    error
	refundCalls  []repository.RefundInput
}

func (f *fakeAdminWarrantyRepo) GetByID(_ context.Context, id int64) (*repository.Warranty, error) {
	if f.warranty == nil || f.warranty.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.warranty, nil
}

func (f *fakeAdminWarrantyRepo) Suspend(_ context.Context, _, _ int64, _ string) error {
	f.suspended++
	return nil
}

func (f *fakeAdminWarrantyRepo) Unsuspend(_ context.Context, _, _ int64, _ string) error {
	f.unsuspended++
	return nil
}

func (f *fakeAdminWarrantyRepo) ChangeOwner(_ context.Context, _, newOwnerID, _ int64, _ string) error {
	f.ownerChange = append(f.ownerChange, newOwnerID)
	return nil
}

func (f *fakeAdminWarrantyRepo) ProcessRefund(_ context.Context, input repository.RefundInput) (*repository.RefundResult, error) {
	f.refundCalls = append(f.refundCalls, input)
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	return f.refundResult, nil
}

type fakeAdminUserRepo struct {
	repository.UserRepository

	known map[int64]bool
}

func (f *fakeAdminUserRepo) GetByID(_ context.Context, id int64) (*repository.User, error) {
	if f.known[id] {
		return &repository.User{ID: id, Email: "u@example.com"}, nil
	}
	return nil, repository.ErrNotFound
}

func newWarrantyService(wr *fakeAdminWarrantyRepo, users map[int64]bool) admin.WarrantyService {
	return admin.NewWarrantyService(admin.WarrantyDeps{
		Warranties: wr,
		Users:      &fakeAdminUserRepo{known: users},
	})
}

func TestApplyEvent(t *testing.T) {
	ctx := context.Background()

	mkRepo := func(status types.WarrantyStatus) *fakeAdminWarrantyRepo {
		return &fakeAdminWarrantyRepo{warranty: &repository.Warranty{ID: 1, Status: status}}
	}

	t.Run("reason under the minimum is rejected", func(t *testing.T) {
		svc := newWarrantyService(mkRepo(types.StatusIssued), nil)
		err := svc.ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "suspend", Reason: "too short"})
		require.ErrorIs(t, err, admin.ErrReasonTooShort)
	})

	t.Run("unknown event type", func(t *testing.T) {
		svc := newWarrantyService(mkRepo(types.StatusIssued), nil)
		for _, typ := range []string{"revoke", "status_change", "anything"} {
			err := svc.ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: typ, Reason: validReason})
			require.ErrorIs(t, err, admin.ErrUnknownEventType, "type %s", typ)
		}
	})

	t.Run("suspend requires a suspendable status", func(t *testing.T) {
		wr := mkRepo(types.StatusSuspended)
		err := newWarrantyService(wr, nil).ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "suspend", Reason: validReason})
		require.ErrorIs(t, err, admin.ErrInvalidStatus)
		require.Zero(t, wr.suspended)
	})

	t.Run("unsuspend only from suspended", func(t *testing.T) {
		wr := mkRepo(types.StatusActive)
		err := newWarrantyService(wr, nil).ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "unsuspend", Reason: validReason})
		require.ErrorIs(t, err, admin.ErrInvalidStatus)

		wr = mkRepo(types.StatusSuspended)
		err = newWarrantyService(wr, nil).ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "unsuspend", Reason: validReason})
		require.NoError(t, err)
		require.Equal(t, 1, wr.unsuspended)
	})

	t.Run("owner change validates the new owner", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued)
		svc := newWarrantyService(wr, map[int64]bool{5: true})

		err := svc.ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "owner_change", Reason: validReason})
		require.ErrorIs(t, err, admin.ErrMissingOwner)

		err = svc.ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "owner_change", Reason: validReason, NewOwnerID: 404})
		require.ErrorIs(t, err, repository.ErrNotFound)

		err = svc.ApplyEvent(ctx, 1, 99, dto.EventRequest{Type: "owner_change", Reason: validReason, NewOwnerID: 5})
		require.NoError(t, err)
		require.Equal(t, []int64{5}, wr.ownerChange)
	})
}

func TestProcessRefund(t *testing.T) {
	ctx := context.Background()
	const eventID = "0b0e7a2e-9a3e-4a8c-b8f1-1d2e3f4a5b6c"

	mkRepo := func(status types.WarrantyStatus) *fakeAdminWarrantyRepo {
		return &fakeAdminWarrantyRepo{
			warranty:     &repository.Warranty{ID: 1, Status: status},
			refundResult: &repository.RefundResult{CreditNoteID: 77},
		}
	}

	t.Run("active warranties can never be refunded", func(t *testing.T) {
		svc := newWarrantyService(mkRepo(types.StatusActive), nil)
		_, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: validReason})
		require.ErrorIs(t, err, admin.ErrActiveCannotRefund)
	})

	t.Run("refunding twice reports already refunded", func(t *testing.T) {
		svc := newWarrantyService(mkRepo(types.StatusRevoked), nil)
		_, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: validReason})
		require.ErrorIs(t, err, admin.ErrAlreadyRefunded)
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		svc := newWarrantyService(mkRepo(types.StatusIssued), nil)
		_, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: "nope"})
		require.ErrorIs(t, err, admin.ErrReasonTooShort)
	})

	t.Run("idempotency key reaches the repo", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued)
		svc := newWarrantyService(wr, nil)
		out, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: validReason})
		require.NoError(t, err)
		require.False(t, out.AlreadyProcessed)
		require.Equal(t, int64(77), out.CreditNoteID)

		require.Len(t, wr.refundCalls, 1)
		require.Equal(t, eventID, wr.refundCalls[0].RefundEventID)
		require.Equal(t, int64(99), wr.refundCalls[0].AdminUserID)
	})

	t.Run("replay passes through unchanged", func(t *testing.T) {
		wr := mkRepo(types.StatusIssuedUnassigned)
		wr.refundResult = &repository.RefundResult{AlreadyProcessed: true, CreditNoteID: 77}
		svc := newWarrantyService(wr, nil)

		out, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: validReason})
		require.NoError(t, err)
		require.True(t, out.AlreadyProcessed)
		require.Equal(t, int64(77), out.CreditNoteID)
	})

	t.Run("stale state bubbles up", func(t *testing.T) {
		wr := mkRepo(types.StatusIssued)
		wr.refundErr = repository.ErrStaleState
		svc := newWarrantyService(wr, nil)
		_, err := svc.ProcessRefund(ctx, 99, eventID, dto.RefundRequest{WarrantyID: 1, Reason: validReason})
		require.ErrorIs(t, err, repository.ErrStaleState)
	})
}
