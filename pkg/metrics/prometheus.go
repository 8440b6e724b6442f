// Package metrics provides Prometheus metrics for the Hippodata to Equipe bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the bridge service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Import Metrics - Per-kind import outcomes
	importsProcessed *prometheus.CounterVec
	importRecords    *prometheus.CounterVec

	// Upstream Metrics - Hippodata and Equipe call tracking
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Batch Metrics - Submissions to the Equipe batch endpoint
	batchSubmissions *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "h2e",
		subsystem:        "bridge",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.importsProcessed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "imports_processed_total",
			Help:      "Total number of per-competition import attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	m.importRecords = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "import_records_total",
			Help:      "Total number of records produced by the transformers by entity type",
		},
		[]string{"entity"},
	)

	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total number of outbound requests by system, operation and status code",
		},
		[]string{"system", "operation", "status_code"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_latency_milliseconds",
			Help:      "Outbound request latency in milliseconds by system and operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"system", "operation"},
	)

	m.batchSubmissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "batch_submissions_total",
			Help:      "Total number of batch POSTs to Equipe by outcome",
		},
		[]string{"outcome"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordImport counts one per-competition import attempt.
func RecordImport(kind, outcome string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.importsProcessed.WithLabelValues(kind, outcome).Inc()
}

// RecordImportRecords counts records produced by a transformer.
func RecordImportRecords(entity string, n int) {
	if globalManager == nil || !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.importRecords.WithLabelValues(entity).Add(float64(n))
}

// RecordUpstreamRequest counts one outbound call.
func RecordUpstreamRequest(system, operation, statusCode string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(system, operation, statusCode).Inc()
}

// RecordUpstreamLatency records the duration of one outbound call.
func RecordUpstreamLatency(system, operation string, durationMs float64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.upstreamLatency.WithLabelValues(system, operation).Observe(durationMs)
}

// RecordBatchSubmission counts one batch POST by outcome.
func RecordBatchSubmission(outcome string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.batchSubmissions.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest counts one inbound HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of one inbound HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager == nil || !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
