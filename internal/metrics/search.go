package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcome labels.
const (
	OutcomeStructured   = "structured"
	OutcomeUnstructured = "unstructured"
	OutcomeFallback     = "fallback"
	OutcomeError        = "error"
)

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "garden",
			Name:      "search_requests_total",
			Help:      "Search requests by resolution outcome",
		},
		[]string{"outcome"},
	)

	SearchAggregatedItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "garden",
			Name:      "search_aggregated_items",
			Help:      "Number of searchable items aggregated per request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SearchHallucinatedReferencesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "garden",
			Name:      "search_hallucinated_references_total",
			Help:      "Model-asserted results dropped because no aggregated item matched",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchAggregatedItems)
	prometheus.MustRegister(SearchHallucinatedReferencesTotal)
	searchMetricsRegistered = true
}
