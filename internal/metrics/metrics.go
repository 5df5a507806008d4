// AngelaMos | 2026
// metrics.go

// Package metrics registers the Prometheus collectors exported on the
// metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resale"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by principal and outcome",
		},
		[]string{"principal", "outcome"},
	)

	PaymentSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_submissions_total",
			Help:      "Subscription payment submissions by outcome",
		},
		[]string{"outcome"},
	)

	Adjudications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_adjudications_total",
			Help:      "Verification decisions by resulting status",
		},
		[]string{"status"},
	)

	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Customer registrations",
		},
	)
)

const (
	PrincipalAdmin = "admin"
	PrincipalUser  = "user"
)

// LoginOutcome records a login attempt. An empty outcome means success.
func LoginOutcome(principal, outcome string) {
	if outcome == "" {
		outcome = "success"
	}
	LoginAttempts.WithLabelValues(principal, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
