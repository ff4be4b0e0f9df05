package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	httpRequestsTotal        *prometheus.CounterVec
	httpLatencySeconds       *prometheus.HistogramVec
	authFailuresTotal        *prometheus.CounterVec
	csrfRejectionsTotal      prometheus.Counter
	rateLimitRejectionsTotal *prometheus.CounterVec
	auditRecordsTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution of API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		authFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of rejected authentication attempts.",
		}, []string{"reason"})

		csrfRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csrf_rejections_total",
			Help: "Total number of requests rejected by CSRF validation.",
		})

		rateLimitRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter.",
		}, []string{"path_class"})

		auditRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Total number of audit rows written.",
		}, []string{"action"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			authFailuresTotal,
			csrfRejectionsTotal,
			rateLimitRejectionsTotal,
			auditRecordsTotal,
		)
	})
}

// HTTPRequests returns the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency returns the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// AuthFailures returns the auth failure counter.
func AuthFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return authFailuresTotal
}

// CSRFRejections returns the CSRF rejection counter.
func CSRFRejections() prometheus.Counter {
	RegisterMetrics()
	return csrfRejectionsTotal
}

// RateLimitRejections returns the rate limit rejection counter.
func RateLimitRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimitRejectionsTotal
}

// AuditRecords returns the audit write counter.
func AuditRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return auditRecordsTotal
}
