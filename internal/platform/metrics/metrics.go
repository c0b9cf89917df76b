package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	AuthFailures    prometheus.Counter
	Forbidden       prometheus.Counter
	UpstreamErrors  prometheus.Counter
	UpstreamLatency prometheus.Histogram
	AuditEmitted    prometheus.Counter
	AuditDropped    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of requests handled, labeled by outcome",
		}, []string{"outcome"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_auth_failures_total",
			Help: "Total number of requests rejected with an invalid or missing token",
		}),
		Forbidden: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_forbidden_total",
			Help: "Total number of requests rejected by the access policy table",
		}),
		UpstreamErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_upstream_errors_total",
			Help: "Total number of failed calls to the upstream API",
		}),
		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gateway_upstream_latency_seconds",
			Help:    "Latency of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		AuditEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_audit_entries_total",
			Help: "Total number of audit entries handed to the collector",
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_audit_dropped_total",
			Help: "Total number of audit entries dropped because the buffer was full",
		}),
	}
}

// Request outcome labels for RequestsTotal.
const (
	OutcomeProxied       = "proxied"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeForbidden     = "forbidden"
	OutcomeUpstreamError = "upstream_error"
)
