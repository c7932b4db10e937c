package providers

import (
	"shiftwatch/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(layer string)
	IncCacheMisses(layer string)
	ObservePersistenceDuration(duration time.Duration)
	IncRuns(outcome string)
	ObserveRunDuration(duration time.Duration)
	SetCodesTotal(count int)
	AddNewCodes(count int)
	IncFetchErrors(source, class string)
	IncDeliveries(outcome string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	runsTotal           *prometheus.CounterVec
	runDuration         prometheus.Histogram
	codesTotal          prometheus.Gauge
	newCodes            prometheus.Counter
	fetchErrors         *prometheus.CounterVec
	deliveries          *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(layer string) {
	m.cacheHits.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) IncCacheMisses(layer string) {
	m.cacheMisses.WithLabelValues(layer).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRuns(outcome string) {
	m.runsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveRunDuration(duration time.Duration) {
	m.runDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetCodesTotal(count int) {
	m.codesTotal.Set(float64(count))
}

func (m *MetricsProvider) AddNewCodes(count int) {
	m.newCodes.Add(float64(count))
}

func (m *MetricsProvider) IncFetchErrors(source, class string) {
	m.fetchErrors.WithLabelValues(source, class).Inc()
}

func (m *MetricsProvider) IncDeliveries(outcome string) {
	m.deliveries.WithLabelValues(outcome).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}
	return newMetricsProvider(prometheus.DefaultRegisterer)
}

func newMetricsProvider(reg prometheus.Registerer) *MetricsProvider {
	factory := promauto.With(reg)
	return &MetricsProvider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiftwatch_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_cache_hits_total",
			Help: "Total number of cache hits by layer",
		}, []string{"layer"}),

		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_cache_misses_total",
			Help: "Total number of cache misses by layer",
		}, []string{"layer"}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftwatch_persistence_duration_seconds",
			Help:    "Duration of store snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_runs_total",
			Help: "Monitoring runs by outcome",
		}, []string{"outcome"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftwatch_run_duration_seconds",
			Help:    "Wall-clock duration of a monitoring run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		codesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shiftwatch_codes_total",
			Help: "Number of known codes after the last run",
		}),

		newCodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "shiftwatch_new_codes_total",
			Help: "Codes inserted for the first time",
		}),

		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_fetch_errors_total",
			Help: "Source fetch failures by source and class",
		}, []string{"source", "class"}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftwatch_deliveries_total",
			Help: "Webhook delivery outcomes",
		}, []string{"outcome"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncRuns(_ string)                                 {}
func (n *noopMetrics) ObserveRunDuration(_ time.Duration)               {}
func (n *noopMetrics) SetCodesTotal(_ int)                              {}
func (n *noopMetrics) AddNewCodes(_ int)                                {}
func (n *noopMetrics) IncFetchErrors(_, _ string)                       {}
func (n *noopMetrics) IncDeliveries(_ string)                           {}

// NewNoopMetrics returns a provider that discards every observation.
func NewNoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
