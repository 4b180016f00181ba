package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PromptsCreatedTotal counts prompts successfully inserted.
	PromptsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prompts_created_total",
			Help: "Total number of prompts created",
		},
	)

	// AuthFailuresTotal counts rejected Basic authentication attempts.
	AuthFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
	)
)

// UnmatchedRoute is the path label for requests that matched no route.
const UnmatchedRoute = "unmatched"

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PromptsCreatedTotal, AuthFailuresTotal)
	})
}

// RecordRequest records duration and count for an HTTP request. route must be a
// bounded label: a route pattern or UnmatchedRoute, never a raw request path.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func IncPromptsCreated() {
	PromptsCreatedTotal.Inc()
}

func IncAuthFailures() {
	AuthFailuresTotal.Inc()
}
