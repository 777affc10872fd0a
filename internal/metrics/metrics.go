// Package metrics defines the prometheus instrumentation for the analysis
// pipeline and the HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nomen",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis run",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"domain"},
	)

	entitiesAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nomen",
			Name:      "entities_analyzed_total",
			Help:      "Entities that reached the statistics stage",
		},
		[]string{"domain"},
	)

	entitiesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nomen",
			Name:      "entities_skipped_total",
			Help:      "Entities dropped before the statistics stage, by reason",
		},
		[]string{"domain", "reason"},
	)
)

// RegisterPipelineMetrics registers the pipeline metrics with the default
// registry. Called once from the composition root; library callers that
// never call it keep their registry clean.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(entitiesAnalyzed)
	prometheus.MustRegister(entitiesSkipped)
}

// ObserveRun records one completed analysis run.
func ObserveRun(domainTag string, analyzed int, skipReasons map[string]int, elapsed time.Duration) {
	analysisDuration.WithLabelValues(domainTag).Observe(elapsed.Seconds())
	entitiesAnalyzed.WithLabelValues(domainTag).Add(float64(analyzed))
	for reason, count := range skipReasons {
		entitiesSkipped.WithLabelValues(domainTag, reason).Add(float64(count))
	}
}
