package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	adminctrl "github.com/dropDatabas3/prepmood/internal/http/controllers/admin"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	"github.com/dropDatabas3/prepmood/internal/http/middlewares"
	svc "github.com/dropDatabas3/prepmood/internal/http/services/admin"
)

// fakeWarrantyService registra la última llamada a ProcessRefund.
type fakeWarrantyService struct {
	svc.WarrantyService

	refundKey string
	refundErr error
}

func (f *fakeWarrantyService) ProcessRefund(_ context.Context, _ int64, refundEventID string, _ dto.RefundRequest) (*dto.RefundResponse, error) {
	f.refundKey = refundEventID
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	return &dto.RefundResponse{CreditNoteID: 1}, nil
}

func doRefund(t *testing.T, service svc.WarrantyService, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	c := adminctrl.NewWarrantiesController(service)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/refunds/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	req = req.WithContext(middlewares.WithSession(req.Context(), &middlewares.Session{UserID: 99, IsAdmin: true}))

	rec := httptest.NewRecorder()
	c.ProcessRefund(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Code
}

func TestProcessRefund_IdempotencyKeyValidation(t *testing.T) {
	const validKey = "0b0e7a2e-9a3e-4a8c-b8f1-1d2e3f4a5b6c"
	body := `{"warranty_id":1,"reason":"customer asked for it in writing"}`

	t.Run("missing header", func(t *testing.T) {
		f := &fakeWarrantyService{}
		rec := doRefund(t, f, "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "MISSING_IDEMPOTENCY_KEY", errorCode(t, rec))
		require.Empty(t, f.refundKey, "service must not be reached")
	})

	t.Run("not a uuid", func(t *testing.T) {
		rec := doRefund(t, &fakeWarrantyService{}, "refund-123", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_IDEMPOTENCY_KEY_FORMAT", errorCode(t, rec))
	})

	t.Run("too long", func(t *testing.T) {
		rec := doRefund(t, &fakeWarrantyService{}, validKey+strings.Repeat("0", 40), body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_IDEMPOTENCY_KEY_FORMAT", errorCode(t, rec))
	})

	t.Run("missing warranty_id", func(t *testing.T) {
		rec := doRefund(t, &fakeWarrantyService{}, validKey, `{"reason":"customer asked for it in writing"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "MISSING_FIELD", errorCode(t, rec))
	})

	t.Run("valid key reaches the service", func(t *testing.T) {
		f := &fakeWarrantyService{}
		rec := doRefund(t, f, validKey, body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, validKey, f.refundKey)
	})

	t.Run("service errors map to the catalog", func(t *testing.T) {
		f := &fakeWarrantyService{refundErr: svc.ErrActiveCannotRefund}
		rec := doRefund(t, f, validKey, body)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "ACTIVE_WARRANTY_CANNOT_REFUND", errorCode(t, rec))
	})
}
