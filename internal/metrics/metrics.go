// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication metrics
var (
	// AuthAttemptsTotal counts register/login/logout calls by outcome.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// KDFDuration tracks time spent deriving password hashes, including the
	// wait for a free worker slot.
	KDFDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdf_duration_seconds",
			Help:    "Password key derivation duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

// Session metrics
var (
	// SessionOpsTotal counts backing store operations by backend, operation and status.
	SessionOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_operations_total",
			Help: "Session backing store operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks error responses by error type.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)

	// HTTPRequestDuration tracks handler latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
