// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of answer pipeline invocations by outcome",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	CitationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citation_lookups_total",
			Help: "Total number of citation lookups by result",
		},
		[]string{"result"},
	)

	SearchResultsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_extracted",
			Help:    "Number of usable results extracted per search",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)
)
