package monitoring

import (
	"time"

	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/event"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type EligibilityMetrics struct {
	DecisionsTotal     *prometheus.CounterVec
	CheckFailuresTotal *prometheus.CounterVec
	CheckErrorsTotal   *prometheus.CounterVec
	CheckDuration      *prometheus.HistogramVec
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_eligibility_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mortgage_eligibility_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	Eligibility = EligibilityMetrics{
		DecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_eligibility_decisions_total",
				Help: "Eligibility decisions recorded, by outcome.",
			},
			[]string{"outcome"},
		),
		CheckFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_eligibility_check_failures_total",
				Help: "Checks that answered false, by check.",
			},
			[]string{"check"},
		),
		CheckErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_eligibility_check_errors_total",
				Help: "Checks that could not produce an answer, by check.",
			},
			[]string{"check"},
		),
		CheckDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mortgage_eligibility_check_duration_seconds",
				Help:    "Histogram of collaborator check latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"check"},
		),
	}
)

var (
	_ eligibility.CheckObserver    = EligibilityMetrics{}
	_ eligibility.DecisionObserver = EligibilityMetrics{}
)

func (m EligibilityMetrics) ObserveCheck(check eligibility.CheckName, passed bool, err error, elapsed time.Duration) {
	label := string(check)
	m.CheckDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.CheckErrorsTotal.WithLabelValues(label).Inc()
	case !passed:
		m.CheckFailuresTotal.WithLabelValues(label).Inc()
	}
}

func (m EligibilityMetrics) ObserveDecision(outcome eligibility.Outcome) {
	m.DecisionsTotal.WithLabelValues(string(outcome)).Inc()
}

type ConsumerMetrics struct {
	DeliveriesTotal *prometheus.CounterVec
}

var Consumer = ConsumerMetrics{
	DeliveriesTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mortgage_eligibility_notifier_deliveries_total",
			Help: "Decision events consumed by the notifier, by routing key and how they were settled.",
		},
		[]string{"routing_key", "result"},
	),
}

var _ event.DeliveryObserver = ConsumerMetrics{}

func (m ConsumerMetrics) ObserveDelivery(routingKey, result string) {
	m.DeliveriesTotal.WithLabelValues(routingKey, result).Inc()
}
