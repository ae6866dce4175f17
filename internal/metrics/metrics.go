// Package metrics exposes the prometheus collectors of the service.
package metrics

import (
	"regexp"
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

	// RequestsInFlight is the number of requests currently being served.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// SlowRequestsTotal counts requests slower than the configured threshold.
	SlowRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_slow_requests_total",
			Help: "Total number of requests above the slow request threshold",
		},
	)

	// ResourceMutationsTotal counts resource writes by operation and outcome.
	ResourceMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_mutations_total",
			Help: "Total number of resource create, update and delete attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// AuditWritesTotal counts booking log writes by outcome (written, failed, dropped).
	AuditWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_log_writes_total",
			Help: "Total number of booking log writes by outcome",
		},
		[]string{"outcome"},
	)

	// AuditQueueDepth is the number of entries waiting to be written.
	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_log_queue_depth",
			Help: "Number of booking log entries waiting in the queue",
		},
	)
)

// Audit write outcomes
const (
	AuditWritten = "written"
	AuditFailed  = "failed"
	AuditDropped = "dropped"
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration,
			RequestTotal,
			RequestsInFlight,
			SlowRequestsTotal,
			ResourceMutationsTotal,
			AuditWritesTotal,
			AuditQueueDepth,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/resources/12 -> /api/resources/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordMutation counts one resource write attempt.
func RecordMutation(operation, outcome string) {
	ResourceMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordAuditWrite counts one booking log write by outcome.
func RecordAuditWrite(outcome string) {
	AuditWritesTotal.WithLabelValues(outcome).Inc()
}

// SetAuditQueueDepth publishes the current queue length.
func SetAuditQueueDepth(n int) {
	AuditQueueDepth.Set(float64(n))
}
