package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for opsboard
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Import Metrics
	ImportRecordsTotal    *prometheus.CounterVec
	ImportCommitsTotal    *prometheus.CounterVec
	ImportDuration        *prometheus.HistogramVec
	FuzzyMatchConfidence  prometheus.Histogram
	CanonicalizationTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsboard_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opsboard_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Import Metrics
		ImportRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_import_records_total",
				Help: "Records seen by validate and commit, by entity kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ImportCommitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_import_commits_total",
				Help: "Commit attempts by entity kind and audit status",
			},
			[]string{"kind", "status"},
		),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsboard_import_duration_seconds",
				Help:    "Validate and commit execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind", "operation"},
		),
		FuzzyMatchConfidence: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opsboard_fuzzy_match_confidence",
				Help:    "Confidence of operator name matches",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100},
			},
		),
		CanonicalizationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsboard_canonicalization_total",
				Help: "Aircraft type canonicalizations by confidence tier",
			},
			[]string{"confidence"},
		),
	}
}
