// Package metrics provides Prometheus metrics for the DriftWatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the DriftWatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Batch pipeline metrics
	batchRuns        prometheus.Counter
	batchDuration    prometheus.Histogram
	batchTaskLatency prometheus.Histogram
	batchWorkerCount prometheus.Gauge
	tenantOutcomes   *prometheus.CounterVec

	// Drift metrics
	driftAlerts *prometheus.CounterVec

	// Score source metrics
	scoreSourceLatency prometheus.Histogram
	scoreSourceErrors  prometheus.Counter

	// Admission control metrics
	admissionDecisions   *prometheus.CounterVec
	admissionStoreErrors prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "driftwatch",
		subsystem:        "pipeline",
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

// initializeMetrics registers every metric against the configured registry.
func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.batchRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_runs_total",
		Help:      "Total number of recalculation batch passes executed.",
	})

	m.batchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_ms",
		Help:      "Wall-clock duration of a full batch pass in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})

	m.batchTaskLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_task_latency_ms",
		Help:      "Per-tenant task processing latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.batchWorkerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_workers",
		Help:      "Number of workers used by the current batch pass.",
	})

	m.tenantOutcomes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tenant_outcomes_total",
		Help:      "Per-tenant batch outcomes by status.",
	}, []string{"status"})

	m.driftAlerts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drift_alerts_total",
		Help:      "Drift alerts raised, by severity.",
	}, []string{"severity"})

	m.scoreSourceLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_source_latency_ms",
		Help:      "Latency of score source calls in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.scoreSourceErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_source_errors_total",
		Help:      "Failed score source calls (non-2xx, malformed, timeout).",
	})

	m.admissionDecisions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "admission",
		Name:      "decisions_total",
		Help:      "Admission decisions by limiter profile and outcome.",
	}, []string{"profile", "outcome"})

	m.admissionStoreErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "admission",
		Name:      "store_errors_total",
		Help:      "Counter store failures resolved by the fail-open policy.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines.",
	})
}

// GetRegistry returns the custom Prometheus registry for HTTP exposure.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordBatchRun records one completed batch pass and its duration.
func RecordBatchRun(durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.batchRuns.Inc()
		globalManager.batchDuration.Observe(durationMs)
	}
}

// RecordBatchTaskLatency records one per-tenant task latency.
func RecordBatchTaskLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.batchTaskLatency.Observe(latencyMs)
	}
}

// UpdateBatchWorkerCount sets the worker gauge for the current pass.
func UpdateBatchWorkerCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.batchWorkerCount.Set(float64(count))
	}
}

// RecordTenantOutcome counts one per-tenant batch outcome.
func RecordTenantOutcome(status string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.tenantOutcomes.WithLabelValues(status).Inc()
	}
}

// RecordDriftAlert counts one raised drift alert by severity.
func RecordDriftAlert(severity string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.driftAlerts.WithLabelValues(severity).Inc()
	}
}

// RecordScoreSourceLatency records the latency of one score source call.
func RecordScoreSourceLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoreSourceLatency.Observe(latencyMs)
	}
}

// RecordScoreSourceError counts one failed score source call.
func RecordScoreSourceError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.scoreSourceErrors.Inc()
	}
}

// RecordAdmissionDecision counts one admission decision.
func RecordAdmissionDecision(profile, outcome string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.admissionDecisions.WithLabelValues(profile, outcome).Inc()
	}
}

// RecordAdmissionStoreError counts one counter store failure.
func RecordAdmissionStoreError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.admissionStoreErrors.Inc()
	}
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemMemoryUsage.Set(bytes)
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}
