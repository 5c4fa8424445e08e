package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mw "github.com/dropDatabas3/prepmood/internal/http/middlewares"
	"github.com/dropDatabas3/prepmood/internal/security/session"
)

func okHandler(captured **mw.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = mw.GetSession(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	mgr := session.NewManager("secret", "prepmood", time.Hour)
	raw, _, err := mgr.Issue(7, "ana@example.com", false)
	require.NoError(t, err)

	t.Run("no credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		mw.RequireAuth(mgr)(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		var got *mw.Session
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		mw.RequireAuth(mgr)(okHandler(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, int64(7), got.UserID)
		require.Equal(t, "ana@example.com", got.Email)
	})

	t.Run("session cookie", func(t *testing.T) {
		var got *mw.Session
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: mw.SessionCookieName, Value: raw})
		mw.RequireAuth(mgr)(okHandler(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		mw.RequireAuth(mgr)(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	guard := mw.RequireAdmin(mw.AdminConfig{APIKey: "ops-key"})

	t.Run("valid api key injects an admin session", func(t *testing.T) {
		var got *mw.Session
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/warranties", nil)
		req.Header.Set("X-Admin-API-Key", "ops-key")
		guard(okHandler(&got)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.True(t, got.IsAdmin)
		require.True(t, got.APIKey)
	})

	t.Run("wrong api key is rejected, not ignored", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/warranties", nil)
		req.Header.Set("X-Admin-API-Key", "wrong")
		guard(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin session passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/warranties", nil)
		req = req.WithContext(mw.WithSession(req.Context(), &mw.Session{UserID: 1, IsAdmin: true}))
		guard(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin session is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/warranties", nil)
		req = req.WithContext(mw.WithSession(req.Context(), &mw.Session{UserID: 1}))
		guard(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no session at all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/warranties", nil)
		guard(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWithCSRF(t *testing.T) {
	chain := mw.WithCSRF(mw.CSRFConfig{})

	t.Run("GET passes without tokens", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("POST without tokens is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("double submit match passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set("X-XSRF-TOKEN", "tok-123")
		req.AddCookie(&http.Cookie{Name: mw.CSRFCookieName, Value: "tok-123"})
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("mismatched values are forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set("X-XSRF-TOKEN", "tok-123")
		req.AddCookie(&http.Cookie{Name: mw.CSRFCookieName, Value: "tok-456"})
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bearer flows skip the check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer whatever")
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("api key flows skip the check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/refunds/process", nil)
		req.Header.Set("X-Admin-API-Key", "ops-key")
		chain(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
