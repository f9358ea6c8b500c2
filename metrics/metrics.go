// Package metrics exposes prometheus instrumentation for search outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchDuration observes end-to-end search latency per strategy
	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recall_search_duration_seconds",
		Help:    "End-to-end search duration by strategy.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	// RetrieverFailures counts per-source retrieval failures by reason
	RetrieverFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recall_retriever_failures_total",
		Help: "Retriever failures by source and reason.",
	}, []string{"source", "reason"})

	// DegradedResponses counts searches answered with a partial source set
	DegradedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recall_degraded_responses_total",
		Help: "Searches that succeeded with at least one source unavailable.",
	})

	// ResultsReturned observes how many results each search produced
	ResultsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recall_results_returned",
		Help:    "Number of results returned per search.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)
