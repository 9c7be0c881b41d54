package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/profile"
	"github.com/parleychat/parley/plugin/gemini"
	teststore "github.com/parleychat/parley/store/test"
)

func TestNewServerRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)

	_, err := NewServer(ctx, &profile.Profile{Mode: "dev", Secret: "s"}, ts)
	require.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	s, err := NewServer(ctx, &profile.Profile{
		Mode:           "dev",
		Secret:         "s",
		GeminiAPIKey:   "k",
		GeminiModel:    "gemini-test",
		AllowedOrigins: []string{"http://localhost:5173"},
	}, ts)
	require.NoError(t, err)
	return s
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, "req-1", rec.Header().Get(requestIDHeader))
}

func TestErrorsRenderAsJSON(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	require.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestStartStopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()
	require.NoError(t, <-done)
}

func registerAndCountLogins(t *testing.T, s *Server, forwardedFor func(i int) string) []int {
	t.Helper()
	body := `{"username":"alice","email":"alice@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	codes := []int{}
	for i := 0; i < 8; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", strings.NewReader(`{"username":"alice","password":"wrong"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor(i))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	return codes
}

func TestLoginThrottleIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t)

	codes := registerAndCountLogins(t, s, func(i int) string { return "10.0.0." + strconv.Itoa(i+1) })
	// httptest requests all come from the same socket address.
	require.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1], codes)
}

func TestLoginThrottleTrustsConfiguredProxies(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	s, err := NewServer(ctx, &profile.Profile{
		Mode:           "dev",
		Secret:         "s",
		GeminiAPIKey:   "k",
		TrustedProxies: []string{"192.0.2.0/24"},
	}, ts)
	require.NoError(t, err)

	codes := registerAndCountLogins(t, s, func(i int) string { return "203.0.113." + strconv.Itoa(i+1) })
	for _, code := range codes {
		require.Equal(t, http.StatusUnauthorized, code, codes)
	}
}

func TestNewServerRejectsInvalidTrustedProxy(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	_, err := NewServer(ctx, &profile.Profile{Mode: "dev", Secret: "s", GeminiAPIKey: "k", TrustedProxies: []string{"nope"}}, ts)
	require.Error(t, err)
}

func TestRoutingErrorsKeepStatus(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/chat/", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
