package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResourcesProcessed *prometheus.CounterVec
	ResourcesFailed    *prometheus.CounterVec
	FrontierLength     *prometheus.GaugeVec
	RenderDuration     *prometheus.HistogramVec
)

// Init registers the crawl metrics. Call at most once per process; the
// crawler tolerates the metrics staying nil when exposition is disabled.
func Init() {
	ResourcesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webharvest_resources_processed_total",
			Help: "Total resources dequeued and processed, by outcome.",
		},
		[]string{"site", "outcome"}, // outcome: text, diagnostic, error
	)

	ResourcesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webharvest_resources_failed_total",
			Help: "Per-resource failures, by error category.",
		},
		[]string{"site", "category"},
	)

	FrontierLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "webharvest_frontier_length",
			Help: "Current number of entries in the frontier queue.",
		},
		[]string{"site"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webharvest_render_duration_seconds",
			Help:    "Duration of page render operations.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"site"},
	)
}
