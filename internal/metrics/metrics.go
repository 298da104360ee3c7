package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	ChargesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charges_created_total",
			Help: "Number of charges derived from time logs",
		},
	)

	ChargedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charged_amount_total",
			Help: "Sum of charge amounts derived from time logs",
		},
	)

	LoginFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Rejected login attempts",
		},
		[]string{"reason"}, // reason: credentials, throttled
	)

	SlowQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_queries_total",
			Help: "Queries slower than the configured threshold",
		},
		[]string{"command"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordCharge(amount float64) {
	ChargesCreated.Inc()
	if amount > 0 {
		ChargedAmount.Add(amount)
	}
}

func IncrementLoginFailure(reason string) {
	LoginFailures.WithLabelValues(reason).Inc()
}

func IncrementSlowQuery(command string) {
	SlowQueries.WithLabelValues(command).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
