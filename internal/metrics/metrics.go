// Package metrics provides Prometheus metrics for forensdesk.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evidenceRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forensdesk_evidence_registered_total",
			Help: "Total number of registered evidence images",
		},
	)

	sessionsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensdesk_sessions_opened_total",
			Help: "Total number of opened sessions",
		},
		[]string{"backend", "degraded"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forensdesk_active_sessions",
			Help: "Number of live sessions",
		},
	)

	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensdesk_queries_total",
			Help: "Total number of session queries",
		},
		[]string{"op", "result"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forensdesk_query_duration_seconds",
			Help:    "Session query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	bytesAcquired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensdesk_bytes_acquired_total",
			Help: "Total bytes copied into the upload directory",
		},
		[]string{"source"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvidenceRegistered counts one registration.
func RecordEvidenceRegistered() {
	evidenceRegistered.Inc()
}

// RecordSessionOpened counts an opened session.
func RecordSessionOpened(backend string, degraded bool) {
	sessionsOpened.WithLabelValues(backend, strconv.FormatBool(degraded)).Inc()
}

// SetActiveSessions sets the number of live sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RecordQuery records one query outcome.
func RecordQuery(op string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	queriesTotal.WithLabelValues(op, result).Inc()
	queryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordAcquired records bytes copied from an evidence source.
func RecordAcquired(source string, bytes int64) {
	bytesAcquired.WithLabelValues(source).Add(float64(bytes))
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
