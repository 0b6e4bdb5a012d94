// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth decision outcomes.
const (
	OutcomePublic          = "public"
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeSessionInvalid  = "session_invalid"
	OutcomeSelfAccess      = "self_access_denied"
	OutcomePermission      = "permission_denied"
	OutcomeStoreFailure    = "store_failure"
)

var (
	AuthDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_auth_decisions_total",
			Help: "Auth middleware decisions by outcome and caller role",
		},
		[]string{"outcome", "role"},
	)

	SessionRenewals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_session_renewals_total",
			Help: "Sessions whose expiry was extended on use",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "status"},
	)
)
