// Package metrics provides Prometheus instrumentation for seasondiag.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for diagnoses.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Source labels for season-log loads.
const (
	SourceCache = "cache"
	SourceFetch = "fetch"
	SourceFile  = "file"
)

// Manager owns the Prometheus collectors of one process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Engine
	diagnoses         *prometheus.CounterVec
	diagnosisDuration prometheus.Histogram
	undefinedMetrics  *prometheus.CounterVec

	// Data acquisition
	seasonLoads   *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // process-wide metrics manager

// NewManager creates a metrics manager. Without WithPrometheusRegistry it
// registers on a fresh registry, so Go runtime collectors are not exported.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "seasondiag",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.diagnoses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "diagnoses_total",
		Help:      "Diagnoses run, by outcome and error kind",
	}, []string{"outcome", "kind"})

	m.diagnosisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "diagnosis_duration_milliseconds",
		Help:      "Time spent in the diagnosis pipeline in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.undefinedMetrics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "undefined_trends_total",
		Help:      "Trend entries labelled insufficient-data, by metric",
	}, []string{"metric"})

	m.seasonLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "season_loads_total",
		Help:      "Season logs loaded, by source",
	}, []string{"source"})

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "statcast_fetch_duration_milliseconds",
		Help:      "Baseball Savant download time in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordDiagnosis counts one diagnosis. kind is empty on success.
func (m *Manager) RecordDiagnosis(kind string, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	outcome := OutcomeOK
	if kind != "" {
		outcome = OutcomeError
	} else {
		kind = "none"
	}
	m.diagnoses.WithLabelValues(outcome, kind).Inc()
	m.diagnosisDuration.Observe(ms(elapsed))
}

// RecordUndefinedTrend counts a trend entry that could not be classified.
func (m *Manager) RecordUndefinedTrend(metric string) {
	if !m.enabled {
		return
	}
	m.undefinedMetrics.WithLabelValues(metric).Inc()
}

// RecordSeasonLoad counts a season log served from source.
func (m *Manager) RecordSeasonLoad(source string) {
	if !m.enabled {
		return
	}
	m.seasonLoads.WithLabelValues(source).Inc()
}

// RecordFetchDuration records one Savant download.
func (m *Manager) RecordFetchDuration(elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.fetchDuration.Observe(ms(elapsed))
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms(elapsed))
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the manager's registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// RecordDiagnosis records on the process-wide manager.
func RecordDiagnosis(kind string, elapsed time.Duration) {
	globalManager.RecordDiagnosis(kind, elapsed)
}

// RecordUndefinedTrend records on the process-wide manager.
func RecordUndefinedTrend(metric string) {
	globalManager.RecordUndefinedTrend(metric)
}

// RecordSeasonLoad records on the process-wide manager.
func RecordSeasonLoad(source string) {
	globalManager.RecordSeasonLoad(source)
}

// RecordFetchDuration records on the process-wide manager.
func RecordFetchDuration(elapsed time.Duration) {
	globalManager.RecordFetchDuration(elapsed)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
