package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wink/auth"
	"wink/config"
	"wink/handlers"
	"wink/metrics"
	"wink/services"
	"wink/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, ping func(context.Context) error) *gin.Engine {
	t.Helper()
	issuer, err := auth.NewIssuer("routes-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	users := memstore.NewUsers()
	messages := memstore.NewMessages()
	h := handlers.New(handlers.Services{
		Auth:      services.NewAuthService(users, issuer, bcrypt.MinCost),
		Matching:  services.NewMatchingService(users, nil, m, nil),
		Discovery: services.NewDiscoveryService(users, 0),
		Inbox:     services.NewInboxService(users, messages),
		Messages:  services.NewMessageService(messages, m),
		Profile:   services.NewProfileService(users, nil),
	}, nil, time.Second)

	return SetupRouter(Deps{
		Handler:  h,
		Tokens:   issuer,
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}, AllowVercel: true},
		Ping:     ping,
		Gatherer: reg,
	})
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter(t, nil)
	for _, path := range []string{"/health", "/api/health"} {
		w := get(r, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	}

	down := newRouter(t, func(context.Context) error { return errors.New("no db") })
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/health", nil).Code)
}

func TestNoRoute(t *testing.T) {
	r := newRouter(t, nil)
	w := get(r, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Endpoint not found")
}

func TestCORS(t *testing.T) {
	r := newRouter(t, nil)

	w := get(r, "/api/auth/users", map[string]string{"Origin": "https://wink-app.vercel.app"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://wink-app.vercel.app", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/api/auth/users", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/messages",
		strings.NewReader(`{"sender":"64b7f0c2a1b2c3d4e5f60718","receiver":"64b7f0c2a1b2c3d4e5f60719","text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = get(r, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wink_messages_total 1")
}

func TestRequestIDHeader(t *testing.T) {
	r := newRouter(t, nil)
	w := get(r, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
