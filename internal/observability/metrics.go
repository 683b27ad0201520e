package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the resolution
// pipeline and its collaborators.
type Metrics struct {
	Resolutions        *prometheus.CounterVec // labels: source={cache,live,fallback}
	ResolutionDuration prometheus.Histogram
	ResolutionPanics   prometheus.Counter

	RateLimitDecisions *prometheus.CounterVec // labels: result={allowed,denied}

	ProviderRequests *prometheus.CounterVec // labels: outcome={success,empty,mismatch,error}
	ProviderDuration prometheus.Histogram

	CacheOps *prometheus.CounterVec // labels: op={get,upsert,mark_stale}, result={hit,miss,ok,error}

	NearestLookups *prometheus.CounterVec // labels: mode={primary,degraded}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Resolutions,
		m.ResolutionDuration,
		m.ResolutionPanics,
		m.RateLimitDecisions,
		m.ProviderRequests,
		m.ProviderDuration,
		m.CacheOps,
		m.NearestLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "resolutions_total",
			Help:      "Completed metric resolutions by provenance source.",
		}, []string{"source"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "welfare_metrics",
			Name:      "resolution_duration_seconds",
			Help:      "End-to-end resolution duration including upstream fetches.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		ResolutionPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "resolution_panics_total",
			Help:      "Panics recovered by the pipeline's synthetic fallback guard.",
		}),
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions by result.",
		}, []string{"result"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "provider_requests_total",
			Help:      "External metrics provider calls by outcome.",
		}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "welfare_metrics",
			Name:      "provider_request_duration_seconds",
			Help:      "External metrics provider request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "cache_operations_total",
			Help:      "Metrics cache operations by operation and result.",
		}, []string{"op", "result"}),
		NearestLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "welfare_metrics",
			Name:      "nearest_lookups_total",
			Help:      "Nearest-district lookups by candidate source.",
		}, []string{"mode"}),
	}
}
