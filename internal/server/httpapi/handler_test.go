package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primesecret/authgate/internal/logging"
	"github.com/primesecret/authgate/internal/server/auth"
	"github.com/primesecret/authgate/internal/server/config"
	"github.com/primesecret/authgate/internal/server/repositories/repomanager"
	"github.com/primesecret/authgate/internal/server/services"
)

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	svc := services.NewAuthService(repomanager.NewInMemoryManager(), cfg)
	require.NoError(t, svc.EnsureUser(context.Background(), "test@local", "1234", "Test User"))

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(NewHandler(svc, logger), []byte(cfg.SecretKey), cfg.CORSOrigins, logger), cfg
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "test@local", "password": "1234"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	pair := decodeBody[tokenPairResponse](t, rec)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(600000), pair.ExpiresIn)
	assert.Equal(t, int64(1200000), pair.RefreshExpiresIn)
}

func TestLoginEndpoint_Failures(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		message  string
	}{
		{name: "wrong password", email: "test@local", password: "nope",
			status: http.StatusUnauthorized, message: "invalid email or password"},
		{name: "unknown user", email: "nobody@local", password: "1234",
			status: http.StatusUnauthorized, message: "invalid email or password"},
		{name: "missing email", email: "", password: "1234",
			status: http.StatusBadRequest, message: "email and password are required"},
		{name: "missing password", email: "test@local", password: "",
			status: http.StatusBadRequest, message: "email and password are required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
				map[string]string{"email": tc.email, "password": tc.password}, nil)
			assert.Equal(t, tc.status, rec.Code)
			body := decodeBody[map[string]string](t, rec)
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "new@local", "password": "pw", "name": "New User"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeBody[tokenPairResponse](t, rec)
	assert.NotEmpty(t, pair.AccessToken)

	// duplicate email
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "new@local", "password": "pw"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "email already exists", body["message"])
}

func TestRefreshEndpoint_Rotation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "test@local", "password": "1234"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeBody[tokenPairResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{"refreshToken": pair.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decodeBody[tokenPairResponse](t, rec)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the consumed token is rejected on reuse
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{"refreshToken": pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "invalid refresh token", body["message"])
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutEndpoint_AlwaysSucceeds(t *testing.T) {
	router, _ := newTestRouter(t)

	// unknown token
	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout",
		map[string]string{"refreshToken": "never-issued"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Logout successful", body["message"])

	// malformed body
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewBufferString("{"))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestLogoutEndpoint_RevokesToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "test@local", "password": "1234"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeBody[tokenPairResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout",
		map[string]string{"refreshToken": pair.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{"refreshToken": pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardedRoute(t *testing.T) {
	router, cfg := newTestRouter(t)

	// no token
	rec := doJSON(t, router, http.MethodPost, "/api/audit/log",
		map[string]string{"action": "ping"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// garbage token
	rec = doJSON(t, router, http.MethodPost, "/api/audit/log",
		map[string]string{"action": "ping"},
		map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// expired token
	expired, err := auth.GenerateToken(1, "test@local", []byte(cfg.SecretKey), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodPost, "/api/audit/log",
		map[string]string{"action": "ping"},
		map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid token
	recLogin := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "test@local", "password": "1234"}, nil)
	require.Equal(t, http.StatusOK, recLogin.Code)
	pair := decodeBody[tokenPairResponse](t, recLogin)

	rec = doJSON(t, router, http.MethodPost, "/api/audit/log",
		map[string]string{"action": "ping"},
		map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]bool](t, rec)
	assert.True(t, body["ok"])
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "test@local", "password": "1234"}, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
