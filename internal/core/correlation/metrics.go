package correlation

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// scoringRunsTotal tracks completed/failed scoring runs
	scoringRunsTotal *prometheus.CounterVec

	// eventsScoredTotal tracks scored events by resulting status
	eventsScoredTotal *prometheus.CounterVec

	// eventErrorsTotal tracks per-event failures by pipeline stage
	eventErrorsTotal *prometheus.CounterVec

	// runDuration tracks wall-clock duration of whole scoring runs
	runDuration prometheus.Histogram

	// confidenceScore tracks the distribution of computed scores
	confidenceScore prometheus.Histogram
)

// InitMetrics registers all Prometheus metrics for the scoring pipeline.
// This should be called once at application startup.
func InitMetrics() {
	metricsOnce.Do(func() {
		scoringRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_scoring_runs_total",
				Help: "Total number of scoring runs by outcome",
			},
			[]string{"outcome"},
		)

		eventsScoredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_events_scored_total",
				Help: "Total number of events scored by resulting status",
			},
			[]string{"status"},
		)

		eventErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_event_errors_total",
				Help: "Total number of per-event failures by pipeline stage",
			},
			[]string{"stage"},
		)

		runDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_run_duration_seconds",
				Help:    "Duration of scoring runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		)

		confidenceScore = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentinel_confidence_score",
				Help:    "Distribution of computed confidence scores (0-100)",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		)
	})
}

// RecordRun records a finished scoring run.
// outcome: "completed", "aborted"
func RecordRun(outcome string, duration time.Duration) {
	if scoringRunsTotal != nil {
		scoringRunsTotal.WithLabelValues(outcome).Inc()
	}
	if runDuration != nil {
		runDuration.Observe(duration.Seconds())
	}
}

// RecordEventScored records one scored event.
func RecordEventScored(status string, score int) {
	if eventsScoredTotal != nil {
		eventsScoredTotal.WithLabelValues(status).Inc()
	}
	if confidenceScore != nil {
		confidenceScore.Observe(float64(score))
	}
}

// RecordEventError records a per-event failure.
// stage: "malformed", "link", "spatial", "narrative", "persist"
func RecordEventError(stage string) {
	if eventErrorsTotal != nil {
		eventErrorsTotal.WithLabelValues(stage).Inc()
	}
}
