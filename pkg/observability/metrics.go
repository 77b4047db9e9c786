// Package observability provides metrics capabilities for the docgen gateway.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics namespace for all gateway metrics.
const metricsNamespace = "docgen_gateway"

// Authentication metrics.
var (
	// LoginsTotal counts completed OAuth callbacks by status.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "logins_total",
			Help:      "Total OAuth logins processed",
		},
		[]string{"status"},
	)

	// ActiveSessions tracks the number of sessions currently held in the store.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Number of active user sessions",
		},
	)
)

// Proxy metrics.
var (
	// ProxyRequestsTotal counts proxied GitHub API requests by endpoint and status.
	ProxyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "proxy_requests_total",
			Help:      "Total proxied GitHub API requests",
		},
		[]string{"endpoint", "status"},
	)

	// ProxyRequestDuration measures the duration of proxied requests in seconds.
	ProxyRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "proxy_request_duration_seconds",
			Help:      "Duration of proxied GitHub API requests in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"endpoint"},
	)
)

// HTTP server metrics.
var (
	// RequestsTotal counts HTTP requests by method and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		},
		[]string{"method", "status"},
	)
)

func init() {
	// Register all metrics with the default registry.
	prometheus.MustRegister(
		LoginsTotal,
		ActiveSessions,
		ProxyRequestsTotal,
		ProxyRequestDuration,
		RequestsTotal,
	)
}
