package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mortgage-eligibility/internal/infrastructure/monitoring"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	monitoring.HTTP.RequestsTotal.Reset()
	monitoring.HTTP.RequestDuration.Reset()

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/eligibility/{decisionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/eligibility/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		monitoring.HTTP.RequestsTotal.WithLabelValues(http.MethodGet, "/eligibility/{decisionID}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(monitoring.HTTP.RequestDuration))
}
