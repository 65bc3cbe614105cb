package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"}, // "ok" / "rejected"
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	PipelineItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_items_total",
			Help:      "Per-hit outcomes",
		},
		[]string{"outcome"}, // "success" / "skipped" / "failed"
	)

	PipelineDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_degraded_total",
			Help:      "Stages that ran in degraded mode",
		},
		[]string{"stage", "reason"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search provider requests",
		},
		[]string{"provider", "status"}, // status: "success" / "fallback"
	)

	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Document fetches",
		},
		[]string{"status"}, // "success" / "error"
	)

	FetchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Fetch cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerPipelineOnce sync.Once

// RegisterPipelineMetrics registers pipeline metrics. Safe to call more than once.
func RegisterPipelineMetrics() {
	registerPipelineOnce.Do(func() {
		prometheus.MustRegister(
			PipelineRequestsTotal,
			PipelineStageDuration,
			PipelineItemsTotal,
			PipelineDegradedTotal,
			SearchRequestsTotal,
			FetchRequestsTotal,
			FetchCacheTotal,
		)
	})
}
