package metrics

import (
	"math"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for the service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	estimateBuckets []float64
	enabled         atomic.Bool
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Estimation metrics
	evaluations       *prometheus.CounterVec
	evaluationErrors  *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec
	estimates         *prometheus.HistogramVec
	nonFinite         *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Runtime metrics
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "bioage",
		subsystem:       "estimator",
		latencyBuckets:  []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		estimateBuckets: prometheus.LinearBuckets(-20, 10, 15),
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "evaluations_total",
		Help:        "Total number of successful evaluations by estimator",
		ConstLabels: labels,
	}, []string{"estimator"})

	m.evaluationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "evaluation_errors_total",
		Help:        "Total number of rejected evaluations by estimator and error kind",
		ConstLabels: labels,
	}, []string{"estimator", "kind"})

	m.evaluationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "evaluation_latency_milliseconds",
		Help:        "Evaluation latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"estimator"})

	m.estimates = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "estimate_years",
		Help:        "Distribution of finite estimates in years",
		Buckets:     m.estimateBuckets,
		ConstLabels: labels,
	}, []string{"estimator"})

	m.nonFinite = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "non_finite_estimates_total",
		Help:        "Evaluations that returned NaN or Inf because an input was non-finite",
		ConstLabels: labels,
	}, []string{"estimator"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint, method and status code",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "HTTP error responses by endpoint, method and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.memoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "runtime",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.goroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "runtime",
		Name:        "goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.gcPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "runtime",
		Name:        "gc_pause_time_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordEvaluation records a successful evaluation and its latency.
func (m *Manager) RecordEvaluation(estimator string, value, latencyMs float64) {
	if !m.enabled.Load() {
		return
	}
	m.evaluations.WithLabelValues(estimator).Inc()
	m.evaluationLatency.WithLabelValues(estimator).Observe(latencyMs)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		m.nonFinite.WithLabelValues(estimator).Inc()
		return
	}
	m.estimates.WithLabelValues(estimator).Observe(value)
}

// RecordEvaluationError records a rejected evaluation.
func (m *Manager) RecordEvaluationError(estimator, kind string) {
	if !m.enabled.Load() {
		return
	}
	m.evaluationErrors.WithLabelValues(estimator, kind).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled.Load() {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an HTTP error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	if !m.enabled.Load() {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateMemoryUsage sets the allocated heap size.
func (m *Manager) UpdateMemoryUsage(bytes uint64) {
	if !m.enabled.Load() {
		return
	}
	m.memoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateGoroutineCount(count int) {
	if !m.enabled.Load() {
		return
	}
	m.goroutineCount.Set(float64(count))
}

// RecordGCPauseTime records a GC pause time in milliseconds.
func (m *Manager) RecordGCPauseTime(pauseMs float64) {
	if !m.enabled.Load() {
		return
	}
	m.gcPauseTime.Observe(pauseMs)
}

// SetEnabled toggles collection at run time.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// Package-level helpers backed by the global manager.

// SetEnabled toggles collection on the global manager.
func SetEnabled(enabled bool) {
	globalManager.SetEnabled(enabled)
}

// RecordEvaluation records a successful evaluation on the global manager.
func RecordEvaluation(estimator string, value, latencyMs float64) {
	globalManager.RecordEvaluation(estimator, value, latencyMs)
}

// RecordEvaluationError records a rejected evaluation on the global manager.
func RecordEvaluationError(estimator, kind string) {
	globalManager.RecordEvaluationError(estimator, kind)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an HTTP error on the global manager.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}

// UpdateMemoryUsage sets the allocated heap size on the global manager.
func UpdateMemoryUsage(bytes uint64) {
	globalManager.UpdateMemoryUsage(bytes)
}

// UpdateGoroutineCount sets the goroutine count on the global manager.
func UpdateGoroutineCount(count int) {
	globalManager.UpdateGoroutineCount(count)
}

// RecordGCPauseTime records a GC pause on the global manager.
func RecordGCPauseTime(pauseMs float64) {
	globalManager.RecordGCPauseTime(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Default returns the global manager backing the package-level helpers.
func Default() *Manager {
	return globalManager
}
