package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"mortgage-eligibility/internal/config"

	"github.com/redis/go-redis/v9"
)

// CounterStore is the subset of the Redis API the limiter needs.
type CounterStore interface {
	Pipeline() redis.Pipeliner
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

var _ CounterStore = (*redis.Client)(nil)

// RedisRateLimiter enforces a fixed one-second window per client IP using a
// shared Redis counter, so every replica sees the same budget. Redis errors
// let the request through.
type RedisRateLimiter struct {
	store  CounterStore
	cfg    config.RateLimitConfig
	limit  int64
	window time.Duration
	logger *slog.Logger
}

func NewRedisRateLimiter(cfg config.RateLimitConfig, store CounterStore, logger *slog.Logger) *RedisRateLimiter {
	limit := int64(math.Ceil(cfg.RPS))
	if limit < 1 {
		limit = 1
	}
	return &RedisRateLimiter{
		store:  store,
		cfg:    cfg,
		limit:  limit,
		window: time.Second,
		logger: logger.With("component", "RedisRateLimiter"),
	}
}

// Stop is a no-op; the limiter holds no background work.
func (rl *RedisRateLimiter) Stop() {}

func (rl *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled || rl.store == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := extractIP(r)
		key := "ratelimit:" + ip

		pipe := rl.store.Pipeline()
		incrCmd := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)

		if _, err := pipe.Exec(ctx); err != nil {
			rl.logger.Error("Redis pipeline failed during rate limiting check, allowing request", "error", err, "ip", ip, "key", key)
			next.ServeHTTP(w, r)
			return
		}

		count, err := incrCmd.Result()
		if err != nil {
			rl.logger.Error("Failed to read INCR result, allowing request", "error", err, "ip", ip, "key", key)
			next.ServeHTTP(w, r)
			return
		}

		// Any key left without a TTL gets one here; a counter must never outlive its window.
		ttl, err := ttlCmd.Result()
		if err != nil {
			rl.logger.Error("Failed to read TTL result", "error", err, "ip", ip, "key", key)
		}
		if err != nil || ttl == -1 || ttl == -2 {
			if err := rl.store.Expire(context.WithoutCancel(ctx), key, rl.window).Err(); err != nil {
				rl.logger.Error("Failed to set expiry on rate limit key", "error", err, "key", key)
			}
		}

		if count > rl.limit {
			rl.logger.Warn("Rate limit exceeded", "ip", ip, "count", count, "limit", rl.limit)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"code":    "RATE_LIMITED",
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
