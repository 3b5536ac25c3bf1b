package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "mortgage-eligibility/docs"
	"mortgage-eligibility/internal/api/handler"
	mw "mortgage-eligibility/internal/api/middleware"
	"mortgage-eligibility/internal/config"
	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type routerOptions struct {
	redis mw.CounterStore
}

type RouterOption func(*routerOptions)

// WithRedis shares rate limit counters across replicas through Redis
// instead of keeping them in process memory.
func WithRedis(store mw.CounterStore) RouterOption {
	return func(o *routerOptions) {
		o.redis = store
	}
}

// SetupRouter builds the HTTP surface. The returned func releases background
// resources held by the middleware.
func SetupRouter(svc eligibility.EligibilityService, cfg *config.Config, logger *slog.Logger, opts ...RouterOption) (*chi.Mux, func()) {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	router := chi.NewRouter()

	limiter := newLimiter(cfg.Server.RateLimit, o, logger)
	setupMiddleware(router, limiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupEligibilityRoutes(router, cfg, svc, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router, limiter.Stop
}

func newLimiter(cfg config.RateLimitConfig, o routerOptions, logger *slog.Logger) mw.Limiter {
	if o.redis != nil {
		logger.Info("Using Redis rate limiter", "rps", cfg.RPS)
		return mw.NewRedisRateLimiter(cfg, o.redis, logger)
	}
	return mw.NewRateLimiter(cfg, logger)
}

func setupMiddleware(router *chi.Mux, limiter mw.Limiter, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(limiter.Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupEligibilityRoutes(router *chi.Mux, cfg *config.Config, svc eligibility.EligibilityService, logger *slog.Logger) {
	h := handler.NewEligibilityHandler(svc, logger)

	router.Route("/eligibility", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CheckEligibility)
		r.Get("/", h.ListDecisions)
		r.Get("/{decisionID}", h.GetDecision)
	})
}
