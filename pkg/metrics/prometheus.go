// Package metrics provides Prometheus metrics for the candidate board.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Cache
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations prometheus.Counter

	// Candidate store
	storeLoads         *prometheus.CounterVec
	storeSaves         prometheus.Counter
	storeSaveErrors    prometheus.Counter
	storeLoadFallbacks prometheus.Counter
	candidatesTotal    prometheus.Gauge

	// Pipeline
	rankingDuration     prometheus.Histogram
	aggregationDuration prometheus.Histogram
	queriesTotal        prometheus.Counter
	queryResultSize     prometheus.Histogram
	regenerations       prometheus.Counter
	exportsTotal        *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "candidateboard",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounterVec(m.counterOpts("cache_hits_total", "Memoized slot reads served without recomputation"), []string{"slot"})
	m.cacheMisses = auto.NewCounterVec(m.counterOpts("cache_misses_total", "Slot reads that ran the producer"), []string{"slot"})
	m.cacheInvalidations = auto.NewCounter(m.counterOpts("cache_invalidations_total", "Full cache invalidations"))

	m.storeLoads = auto.NewCounterVec(m.counterOpts("store_loads_total", "Candidate list loads by source"), []string{"source"})
	m.storeSaves = auto.NewCounter(m.counterOpts("store_saves_total", "Candidate list saves attempted"))
	m.storeSaveErrors = auto.NewCounter(m.counterOpts("store_save_errors_total", "Candidate list saves that did not persist"))
	m.storeLoadFallbacks = auto.NewCounter(m.counterOpts("store_load_fallbacks_total", "Loads that fell back to the bundled dataset"))
	m.candidatesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "candidates_total",
		Help:        "Number of candidates in the canonical list",
		ConstLabels: m.constLabels,
	})

	m.rankingDuration = auto.NewHistogram(m.histogramOpts("ranking_duration_milliseconds", "Time spent ranking candidates"))
	m.aggregationDuration = auto.NewHistogram(m.histogramOpts("aggregation_duration_milliseconds", "Time spent aggregating skills"))
	m.queriesTotal = auto.NewCounter(m.counterOpts("queries_total", "Filter/sort/paginate queries executed"))
	m.queryResultSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "query_filtered_count",
		Help:        "Candidates matching a query before pagination",
		Buckets:     []float64{0, 1, 5, 10, 20, 40, 80, 160},
		ConstLabels: m.constLabels,
	})
	m.regenerations = auto.NewCounter(m.counterOpts("regenerations_total", "Synthetic dataset regenerations"))
	m.exportsTotal = auto.NewCounterVec(m.counterOpts("exports_total", "Bulk exports by format"), []string{"format"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordCacheHit counts a memoized read of slot.
func RecordCacheHit(slot string) {
	globalManager.cacheHits.WithLabelValues(slot).Inc()
}

// RecordCacheMiss counts a read of slot that ran its producer.
func RecordCacheMiss(slot string) {
	globalManager.cacheMisses.WithLabelValues(slot).Inc()
}

// RecordCacheInvalidation counts a full cache invalidation.
func RecordCacheInvalidation() {
	globalManager.cacheInvalidations.Inc()
}

// RecordStoreLoad counts a load served from source ("storage" or "default").
func RecordStoreLoad(source string) {
	globalManager.storeLoads.WithLabelValues(source).Inc()
}

// RecordStoreFallback counts a load that used the bundled dataset.
func RecordStoreFallback() {
	globalManager.storeLoadFallbacks.Inc()
}

// RecordStoreSave counts a save attempt.
func RecordStoreSave() {
	globalManager.storeSaves.Inc()
}

// RecordStoreSaveError counts a save whose write failed.
func RecordStoreSaveError() {
	globalManager.storeSaveErrors.Inc()
}

// UpdateCandidatesTotal sets the size of the canonical list.
func UpdateCandidatesTotal(count int) {
	globalManager.candidatesTotal.Set(float64(count))
}

// RecordRankingDuration records ranking latency in milliseconds.
func RecordRankingDuration(ms float64) {
	globalManager.rankingDuration.Observe(ms)
}

// RecordAggregationDuration records skill aggregation latency in milliseconds.
func RecordAggregationDuration(ms float64) {
	globalManager.aggregationDuration.Observe(ms)
}

// RecordQuery counts a query and observes its filtered count.
func RecordQuery(filtered int) {
	globalManager.queriesTotal.Inc()
	globalManager.queryResultSize.Observe(float64(filtered))
}

// RecordRegeneration counts a dataset regeneration.
func RecordRegeneration() {
	globalManager.regenerations.Inc()
}

// RecordExport counts a bulk export in format.
func RecordExport(format string) {
	globalManager.exportsTotal.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
