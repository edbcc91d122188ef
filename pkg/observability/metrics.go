// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the TaskRiser services.
package observability

import "github.com/prometheus/client_golang/prometheus"

// WebBuckets defines histogram buckets suited for CRUD and proxy
// latencies, ranging from 5ms to 10s.
var WebBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by service, method, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskriser_requests_total",
			Help: "Total requests",
		},
		[]string{"service", "method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by service and method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskriser_request_duration_seconds",
			Help:    "Request duration",
			Buckets: WebBuckets,
		},
		[]string{"service", "method"},
	)

	// AuthRejectedTotal counts authentication rejections by cause
	// (missing, invalid).
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskriser_auth_rejected_total",
			Help: "Authentication rejections",
		},
		[]string{"cause"},
	)

	// LoginFailuresTotal counts failed login attempts.
	LoginFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskriser_login_failures_total",
			Help: "Failed login attempts",
		},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate
	// limiter, by limiter scope (general, login, lockout).
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskriser_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"scope"},
	)

	// CSRFRejectedTotal counts mutating requests rejected by the CSRF guard.
	CSRFRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskriser_csrf_rejected_total",
			Help: "CSRF validation rejections",
		},
	)

	// UpstreamRequestsTotal counts gateway requests forwarded to
	// upstream services by route prefix and outcome status class.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskriser_upstream_requests_total",
			Help: "Gateway upstream requests",
		},
		[]string{"prefix", "status"},
	)

	// UpstreamLatency records upstream round-trip latency in seconds by route prefix.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskriser_upstream_latency_seconds",
			Help:    "Gateway upstream latency",
			Buckets: WebBuckets,
		},
		[]string{"prefix"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthRejectedTotal,
		LoginFailuresTotal,
		RateLimitRejectedTotal,
		CSRFRejectedTotal,
		UpstreamRequestsTotal,
		UpstreamLatency,
	)
}
