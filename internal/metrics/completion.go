package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Completion, rate gateway and metadata pipeline metrics.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Total number of completion requests",
		},
		[]string{"model", "status"}, // status: success / timeout / error
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"model", "type"}, // prompt / completion / total
	)

	RateWindowInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_window_requests",
			Help:      "Completion requests admitted in the trailing window",
		},
	)

	RateWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_wait_seconds",
			Help:      "Time callers spent waiting for rate gateway admission",
			Buckets:   []float64{0, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	MetadataOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_outcomes_total",
			Help:      "Metadata resolution outcomes",
		},
		[]string{"outcome"}, // cache_hit / extracted / recovered / fallback / deduplicated
	)
)

var completionMetricsOnce sync.Once

// RegisterCompletionMetrics registers completion, rate and pipeline metrics. Safe to call repeatedly.
func RegisterCompletionMetrics() {
	completionMetricsOnce.Do(func() {
		prometheus.MustRegister(CompletionRequestsTotal)
		prometheus.MustRegister(CompletionRequestDuration)
		prometheus.MustRegister(CompletionTokensTotal)
		prometheus.MustRegister(RateWindowInUse)
		prometheus.MustRegister(RateWaitSeconds)
		prometheus.MustRegister(MetadataOutcomesTotal)
	})
}
