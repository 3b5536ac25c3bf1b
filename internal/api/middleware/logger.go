package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// StructuredLogger logs one line per request. Server errors are logged at
// error level, client errors at warn.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"status", status,
					"latency_ms", float64(time.Since(start).Microseconds()) / 1000.0,
					"bytes_written", ww.BytesWritten(),
					"request_id", middleware.GetReqID(r.Context()),
				}
				if username, ok := UsernameFromContext(r.Context()); ok && username != "" {
					attrs = append(attrs, "username", username)
				}

				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("Served request", attrs...)
				case status >= http.StatusBadRequest:
					logger.Warn("Served request", attrs...)
				default:
					logger.Info("Served request", attrs...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
