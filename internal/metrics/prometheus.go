package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rating engine worker

var (
	// Document source fetch metrics
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcr_source_fetches_total",
			Help: "Total number of document source fetches",
		},
		[]string{"endpoint", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcr_source_fetch_duration_seconds",
			Help:    "Duration of document source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Computation metrics
	ComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcr_compute_duration_seconds",
			Help:    "Duration of ranking and prediction computations in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "category"},
	)

	RankingsComputedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcr_rankings_computed_total",
			Help: "Total number of Elo ranking computations",
		},
		[]string{"category", "mode"},
	)

	MatchesRatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcr_matches_rated_total",
			Help: "Total number of matches fed through the rating engine",
		},
		[]string{"kind"},
	)

	FetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcr_fetch_failures_total",
			Help: "Total number of degraded per-unit fetches (player history or draw)",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcr_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcr_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcr_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcr_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bcr_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordSourceFetch records a document source fetch metric
func RecordSourceFetch(endpoint, status string, duration float64) {
	SourceFetchesTotal.WithLabelValues(endpoint, status).Inc()
	SourceFetchDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordCompute records a computation metric
func RecordCompute(operation, category string, duration float64) {
	ComputeDuration.WithLabelValues(operation, category).Observe(duration)
}

// RecordRanking records a finished ranking computation; mode is "real",
// "simulated" or "neutral" depending on where the matches came from.
func RecordRanking(category, mode string, realMatches, simulatedMatches int) {
	RankingsComputedTotal.WithLabelValues(category, mode).Inc()
	MatchesRatedTotal.WithLabelValues("real").Add(float64(realMatches))
	MatchesRatedTotal.WithLabelValues("simulated").Add(float64(simulatedMatches))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordFetchFailure records a degraded per-unit fetch
func RecordFetchFailure() {
	FetchFailuresTotal.Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
