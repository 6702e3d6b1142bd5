package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/01moynul/vividen-storefront/internal/metrics"
	"github.com/01moynul/vividen-storefront/internal/models"
	"github.com/01moynul/vividen-storefront/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]string

func (f fakeTokens) ValidateToken(token string) (string, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type fakeUsers struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newGuardedRouter(users *fakeUsers) *gin.Engine {
	tokens := fakeTokens{"alice-token": "alice", "root-token": "root", "ghost-token": "ghost"}
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(tokens))
	authed.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	authed.GET("/users/:userId", SelfOrAdmin(users, "userId"), func(c *gin.Context) { c.Status(http.StatusOK) })
	authed.POST("/admin", AdminMiddleware(users), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newGuardedRouter(&fakeUsers{})

	rec := do(r, http.MethodGet, "/me", "alice-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "forged").Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token alice-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid token format (must be Bearer)"}`, rec.Body.String())
}

func TestSelfOrAdmin(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{
		"alice": {ID: "alice"},
		"root":  {ID: "root", IsAdmin: true},
	}}
	r := newGuardedRouter(users)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/users/alice", "alice-token").Code)
	assert.Zero(t, users.calls, "own id needs no lookup")

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/users/bob", "alice-token").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/users/bob", "root-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/users/bob", "ghost-token").Code)
}

func TestAdminMiddleware(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{
		"alice": {ID: "alice"},
		"root":  {ID: "root", IsAdmin: true},
	}}
	r := newGuardedRouter(users)

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/admin", "root-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/admin", "alice-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin", "").Code)

	users.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/admin", "root-token").Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggerAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/ok/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/ok/1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("HTTP request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok/:id", fields["route"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 200, fields["status"])

	rec = do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("HTTP request panicked").Len())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, http.MethodGet, "/api/products/1", "")
	do(r, http.MethodGet, "/api/products/2", "")
	do(r, http.MethodGet, "/nowhere", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(l))
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/login", "").Code)
	rec := do(r, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/login", "").Code)

	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Hour)
	l.Allow("10.0.0.3")
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.visitors, 1, "idle buckets are swept")
}
