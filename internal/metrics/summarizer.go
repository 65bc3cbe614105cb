package metrics

import "github.com/prometheus/client_golang/prometheus"

// Summarizer Prometheus metrics.
var (
	SummarizerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_requests_total",
			Help:      "Total number of summarizer requests",
		},
		[]string{"provider", "model", "status"},
	)

	SummarizerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarizer_request_duration_seconds",
			Help:      "Summarizer request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	SummarizerTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_tokens_total",
			Help:      "Total summarizer tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	SummarizerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_errors_total",
			Help:      "Total summarizer errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	SummarizerBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summarizer_budget_tokens_remaining",
			Help:      "Remaining daily summarizer token budget",
		},
		[]string{"provider"},
	)
)

var summarizerMetricsRegistered bool

// RegisterSummarizerMetrics registers summarizer metrics. Must be called once from main.
func RegisterSummarizerMetrics() {
	if summarizerMetricsRegistered {
		return
	}
	prometheus.MustRegister(SummarizerRequestsTotal)
	prometheus.MustRegister(SummarizerRequestDuration)
	prometheus.MustRegister(SummarizerTokensTotal)
	prometheus.MustRegister(SummarizerErrorsTotal)
	prometheus.MustRegister(SummarizerBudgetTokensRemaining)
	summarizerMetricsRegistered = true
}
