// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_calls_total",
			Help: "Total number of two-phase search invocations",
		},
	)

	SearchPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_pages_fetched_total",
			Help: "Total number of search result pages fetched",
		},
	)

	ItemsEnriched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_enriched_total",
			Help: "Total number of per-item enrichment fetches by outcome",
		},
		[]string{"phase", "outcome"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failures_total",
			Help: "Total number of per-item enrichment failures by kind",
		},
		[]string{"phase", "kind"},
	)

	SearchPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_phase_duration_seconds",
			Help: "Duration of each pipeline phase in seconds",
		},
		[]string{"phase"},
	)

	LowConfidenceSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "category_samples_low_confidence_total",
			Help: "Total number of category discovery samples below the reliability threshold",
		},
	)
)
