// Package metrics provides Prometheus metrics for the podium aggregator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the aggregator service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Queue metrics.
	queueCapacity   *prometheus.GaugeVec
	queueDepth      *prometheus.GaugeVec
	queuePushTotal  *prometheus.CounterVec
	queuePushDrop   *prometheus.CounterVec
	queuePopTotal   *prometheus.CounterVec

	// Connection metrics.
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	connectionErrors  *prometheus.CounterVec

	// Ingestion metrics.
	recordsIngested  prometheus.Counter
	batchLinesDropped *prometheus.CounterVec

	// Worker pool metrics.
	workerActiveCount prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors      prometheus.Counter

	// Ranking engine metrics.
	rankingCacheHits   prometheus.Counter
	rankingCacheMisses prometheus.Counter
	rankingRecomputeLatency prometheus.Histogram
	rankingWaitersCoalesced prometheus.Counter

	// Finalizer metrics.
	finalizeTotal   prometheus.Counter
	finalizeErrors  prometheus.Counter
	finalizeLatency prometheus.Histogram

	// Admin HTTP metrics.
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics, by component.
	errorsByComponent *prometheus.CounterVec

	// System performance metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "podium",
		subsystem:        "aggregator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.queueCapacity = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of a bounded queue.",
	}, []string{"queue"})

	m.queueDepth = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Current number of items buffered in a bounded queue.",
	}, []string{"queue"})

	m.queuePushTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_push_total",
		Help:      "Total number of successful queue pushes.",
	}, []string{"queue"})

	m.queuePushDrop = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_push_dropped_total",
		Help:      "Total number of queue pushes dropped, by reason.",
	}, []string{"queue", "reason"})

	m.queuePopTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_pop_total",
		Help:      "Total number of successful queue pops.",
	}, []string{"queue"})

	m.connectionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connections_active",
		Help:      "Current number of live client connections.",
	})

	m.connectionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connections_total",
		Help:      "Total number of accepted client connections.",
	})

	m.connectionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connection_errors_total",
		Help:      "Total number of per-connection errors by kind.",
	}, []string{"kind"})

	m.recordsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_ingested_total",
		Help:      "Total number of competitor records accepted from clients.",
	})

	m.batchLinesDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_lines_dropped_total",
		Help:      "Total number of batch lines dropped, by reason.",
	}, []string{"reason"})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active aggregation workers.",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Aggregation worker record-append latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of aggregation worker errors.",
	})

	m.rankingCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_cache_hits_total",
		Help:      "Total number of ranking requests served from cache.",
	})

	m.rankingCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_cache_misses_total",
		Help:      "Total number of ranking requests that triggered a recompute.",
	})

	m.rankingRecomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_recompute_latency_milliseconds",
		Help:      "Ranking recompute latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.rankingWaitersCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_waiters_coalesced_total",
		Help:      "Total number of ranking requests coalesced into an in-flight recompute.",
	})

	m.finalizeTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "finalize_total",
		Help:      "Total number of FINAL_REQUEST completions.",
	})

	m.finalizeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "finalize_errors_total",
		Help:      "Total number of FINAL_REQUEST failures.",
	})

	m.finalizeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "finalize_latency_milliseconds",
		Help:      "Finalize latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequestsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admin_http_requests_total",
		Help:      "Total number of admin HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admin_http_request_duration_milliseconds",
		Help:      "Admin HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by originating component.",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes.",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines.",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Queue metrics functions.

// UpdateQueueCapacity sets the configured capacity of a named queue.
func UpdateQueueCapacity(queue string, capacity int) {
	globalManager.queueCapacity.WithLabelValues(queue).Set(float64(capacity))
}

// UpdateQueueDepth sets the current depth of a named queue.
func UpdateQueueDepth(queue string, depth int) {
	globalManager.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordQueuePush increments the push counter for a named queue.
func RecordQueuePush(queue string) {
	globalManager.queuePushTotal.WithLabelValues(queue).Inc()
}

// RecordQueuePushDropped increments the dropped-push counter for a named queue.
func RecordQueuePushDropped(queue, reason string) {
	globalManager.queuePushDrop.WithLabelValues(queue, reason).Inc()
}

// RecordQueuePop increments the pop counter for a named queue.
func RecordQueuePop(queue string) {
	globalManager.queuePopTotal.WithLabelValues(queue).Inc()
}

// Connection metrics functions.

// UpdateConnectionsActive sets the current number of live connections.
func UpdateConnectionsActive(count int) {
	globalManager.connectionsActive.Set(float64(count))
}

// RecordConnectionAccepted increments the accepted-connections counter.
func RecordConnectionAccepted() {
	globalManager.connectionsTotal.Inc()
}

// RecordConnectionError increments the connection error counter for a kind.
func RecordConnectionError(kind string) {
	globalManager.connectionErrors.WithLabelValues(kind).Inc()
}

// Ingestion metrics functions.

// RecordRecordIngested increments the ingested-records counter.
func RecordRecordIngested() {
	globalManager.recordsIngested.Inc()
}

// RecordBatchLineDropped increments the dropped-batch-line counter for a reason.
func RecordBatchLineDropped(reason string) {
	globalManager.batchLinesDropped.WithLabelValues(reason).Inc()
}

// Worker metrics functions.

// UpdateWorkerActiveCount sets the number of active aggregation workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records aggregation worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Ranking metrics functions.

// RecordRankingCacheHit increments the ranking cache hit counter.
func RecordRankingCacheHit() {
	globalManager.rankingCacheHits.Inc()
}

// RecordRankingCacheMiss increments the ranking cache miss counter.
func RecordRankingCacheMiss() {
	globalManager.rankingCacheMisses.Inc()
}

// RecordRankingRecomputeLatency records recompute latency in milliseconds.
func RecordRankingRecomputeLatency(latencyMs float64) {
	globalManager.rankingRecomputeLatency.Observe(latencyMs)
}

// RecordRankingWaiterCoalesced increments the coalesced-waiters counter.
func RecordRankingWaiterCoalesced() {
	globalManager.rankingWaitersCoalesced.Inc()
}

// Finalizer metrics functions.

// RecordFinalize increments the finalize counter.
func RecordFinalize() {
	globalManager.finalizeTotal.Inc()
}

// RecordFinalizeError increments the finalize error counter.
func RecordFinalizeError() {
	globalManager.finalizeErrors.Inc()
}

// RecordFinalizeLatency records finalize latency in milliseconds.
func RecordFinalizeLatency(latencyMs float64) {
	globalManager.finalizeLatency.Observe(latencyMs)
}

// Admin HTTP metrics functions.

// RecordHTTPRequest increments the admin HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records admin HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// Generic error metrics function.

// RecordErrorByComponent records an error with component and kind labels.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// System performance metrics functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
