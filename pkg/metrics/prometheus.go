// Package metrics provides Prometheus metrics for the sdvxrec engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons used with RecordEventSkipped.
const (
	SkipMalformed  = "malformed"
	SkipCollection = "collection"
	SkipOwner      = "owner"
)

// Manager owns every collector exported by the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	eventsRead     *prometheus.CounterVec
	eventsSkipped  *prometheus.CounterVec
	eventsIngested prometheus.Counter
	recordsReplace prometheus.Counter
	recordsStored  prometheus.Gauge
	catalogSize    prometheus.Gauge
	loadDuration   *prometheus.HistogramVec
	loadErrors     *prometheus.CounterVec

	// Queries
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	skillScore    prometheus.Gauge

	// HTTP
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sdvxrec",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsRead = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_read_total",
		Help:        "Raw score events handed to the engine, by backend",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.eventsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_skipped_total",
		Help:        "Raw rows dropped by an ingestion adapter, by reason",
		ConstLabels: m.constLabels,
	}, []string{"source", "reason"})

	m.eventsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_ingested_total",
		Help:        "Canonical records that changed the best record store",
		ConstLabels: m.constLabels,
	})

	m.recordsReplace = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_replaced_total",
		Help:        "Stored records superseded by a higher volforce",
		ConstLabels: m.constLabels,
	})

	m.recordsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_stored",
		Help:        "Distinct (music, difficulty) records held by the store",
		ConstLabels: m.constLabels,
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "catalog_music",
		Help:        "Music entries in the loaded catalog",
		ConstLabels: m.constLabels,
	})

	m.loadDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "load_duration_milliseconds",
		Help:        "Duration of the load phase in milliseconds, by stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.loadErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "load_errors_total",
		Help:        "Fatal load failures, by stage",
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queries_total",
		Help:        "Queries served, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "query_duration_milliseconds",
		Help:        "Query latency in milliseconds, by kind",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.skillScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "volforce",
		Help:        "Last computed aggregate volforce in thousandths",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests served, by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request latency in milliseconds, by endpoint and method",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method"})
}

// RecordEventRead counts a raw event that reached the engine.
func RecordEventRead(source string) {
	globalManager.eventsRead.WithLabelValues(source).Inc()
}

// RecordEventSkipped counts a raw row dropped before the engine.
func RecordEventSkipped(source, reason string) {
	globalManager.eventsSkipped.WithLabelValues(source, reason).Inc()
}

// RecordEventIngested counts an ingest that changed the store.
func RecordEventIngested() {
	globalManager.eventsIngested.Inc()
}

// RecordRecordReplaced counts a stored record replaced by a better one.
func RecordRecordReplaced() {
	globalManager.recordsReplace.Inc()
}

// UpdateRecordsStored sets the number of stored records.
func UpdateRecordsStored(n int) {
	globalManager.recordsStored.Set(float64(n))
}

// UpdateCatalogSize sets the number of catalog entries.
func UpdateCatalogSize(n int) {
	globalManager.catalogSize.Set(float64(n))
}

// RecordLoadDuration observes the duration of a load stage.
func RecordLoadDuration(stage string, ms float64) {
	globalManager.loadDuration.WithLabelValues(stage).Observe(ms)
}

// RecordLoadError counts a fatal load failure.
func RecordLoadError(stage string) {
	globalManager.loadErrors.WithLabelValues(stage).Inc()
}

// RecordQuery counts a served query and its latency.
func RecordQuery(kind string, ms float64) {
	globalManager.queries.WithLabelValues(kind).Inc()
	globalManager.queryDuration.WithLabelValues(kind).Observe(ms)
}

// UpdateVolforce publishes the last computed aggregate volforce.
func UpdateVolforce(internal uint32) {
	globalManager.skillScore.Set(float64(internal))
}

// RecordHTTPRequest counts a served HTTP request and its latency.
func RecordHTTPRequest(endpoint, method, status string, ms float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	globalManager.httpDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// GetRegistry returns the registry backing the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler exposes the package registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
