package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mortgage-eligibility/internal/config"
	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	decision *eligibility.Decision
}

func (s *stubService) CheckEligibility(_ context.Context, name string, amount decimal.Decimal) (*eligibility.Decision, error) {
	d := *s.decision
	d.CustomerName = name
	d.Amount = amount
	return &d, nil
}

func (s *stubService) GetDecision(context.Context, uuid.UUID) (*eligibility.Decision, error) {
	return s.decision, nil
}

func (s *stubService) ListDecisions(context.Context, string) ([]*eligibility.Decision, error) {
	return []*eligibility.Decision{s.decision}, nil
}

func testConfig(authEnabled bool) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RateLimit: config.RateLimitConfig{Enabled: false},
			Auth:      config.AuthConfig{Enabled: authEnabled, JWTSecret: "router-secret"},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func newTestRouter(t *testing.T, authEnabled bool) http.Handler {
	t.Helper()
	svc := &stubService{decision: &eligibility.Decision{
		ID:       uuid.New(),
		Eligible: true,
		Mode:     eligibility.ModeShortCircuit,
	}}
	router, stop := SetupRouter(svc, testConfig(authEnabled), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(stop)
	return router
}

func TestSetupRouter_Health(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSetupRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRouter_SwaggerRedirect(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger", nil))

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/swagger/index.html", w.Header().Get("Location"))
}

func TestSetupRouter_EligibilityRequiresToken(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/eligibility",
		strings.NewReader(`{"name":"Ann McKinsey","amount":"125000"}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRouter_TokenThenEligibility(t *testing.T) {
	router := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"analyst"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tok))

	req := httptest.NewRequest(http.MethodPost, "/eligibility", strings.NewReader(`{"name":"Ann McKinsey","amount":"125000"}`))
	req.Header.Set("Authorization", tok.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Ann McKinsey has been Approved", resp["summary"])
}

type memoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *memoryCounterStore) Pipeline() redis.Pipeliner {
	return &memoryPipeline{store: s}
}

func (s *memoryCounterStore) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type memoryPipeline struct {
	redis.Pipeliner
	store *memoryCounterStore
}

func (p *memoryPipeline) Incr(_ context.Context, key string) *redis.IntCmd {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.counts[key]++
	return redis.NewIntResult(p.store.counts[key], nil)
}

func (p *memoryPipeline) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(time.Second, nil)
}

func (p *memoryPipeline) Exec(context.Context) ([]redis.Cmder, error) {
	return nil, nil
}

func TestSetupRouter_RedisRateLimit(t *testing.T) {
	cfg := testConfig(false)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	store := &memoryCounterStore{counts: map[string]int64{}}

	router, stop := SetupRouter(&stubService{decision: &eligibility.Decision{ID: uuid.New()}}, cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)), WithRedis(store))
	t.Cleanup(stop)

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
	assert.Equal(t, int64(2), store.counts["ratelimit:192.0.2.10"])
}
