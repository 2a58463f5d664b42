package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"content-backend/internal/auth"
	"content-backend/internal/config"
	"content-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	return &Server{
		Cfg: &config.Config{
			AdminUser:         "admin",
			AdminPasswordHash: hash,
			JWTSecret:         "test-secret",
		},
		Val: validation.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth: &auth.Manager{
			Secret:     []byte("test-secret"),
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
			Issuer:     "content-backend",
		},
	}
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginIssuesCookies(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"username":"admin","password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, auth.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	claims, err := s.Auth.Parse(access.Value)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAccess, claims.Kind)

	refresh := cookieByName(rec, auth.RefreshCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, refreshCookiePath, refresh.Path)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"root","password":"s3cret"}`,
	} {
		rec := httptest.NewRecorder()
		s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Nil(t, cookieByName(rec, auth.AccessCookie))
	}

	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"username":"admin"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLoginNotConfigured(t *testing.T) {
	s := newTestServer(t)
	s.Cfg.AdminPasswordHash = ""

	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"username":"admin","password":"s3cret"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRefreshRequiresRefreshToken(t *testing.T) {
	s := newTestServer(t)

	access, err := s.Auth.NewAccessToken(auth.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: access})
	rec := httptest.NewRecorder()
	s.AdminRefresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, err := s.Auth.NewRefreshToken(auth.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: refresh})
	rec = httptest.NewRecorder()
	s.AdminRefresh(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieByName(rec, auth.AccessCookie))
}

func TestAdminLogoutClearsCookies(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.AdminLogout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, auth.AccessCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Equal(t, -1, access.MaxAge)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.Checks = map[string]Pinger{"store": stubPinger{}}

	rec := httptest.NewRecorder()
	s.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	s.Checks["cache"] = stubPinger{err: errors.New("dial tcp: refused")}
	rec = httptest.NewRecorder()
	s.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, map[string]string{"store": "ok", "cache": "down"}, body.Checks)
}
