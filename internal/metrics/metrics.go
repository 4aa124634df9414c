// Package metrics provides Prometheus instrumentation for dataset runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

var (
	// RunsTotal counts generation runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chilly_dataset_runs_total",
			Help: "Dataset generation runs",
		},
		[]string{"status"},
	)

	// RunDuration tracks how long a generation run takes.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chilly_dataset_run_duration_seconds",
			Help:    "Dataset generation run duration in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	// Conversations reports the size of the last run at each pipeline stage.
	Conversations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chilly_dataset_conversations",
			Help: "Conversations at each stage of the last dataset run",
		},
		[]string{"stage"},
	)

	// SinkErrorsTotal counts failures of optional run sinks.
	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chilly_sink_errors_total",
			Help: "Failures publishing a finished run to an optional sink",
		},
		[]string{"sink"},
	)
)

// ObserveRun records a successful run.
func ObserveRun(res dataset.Result, d time.Duration) {
	RunsTotal.WithLabelValues("ok").Inc()
	RunDuration.Observe(d.Seconds())
	Conversations.WithLabelValues("segmented").Set(float64(res.Conversations))
	Conversations.WithLabelValues("complete").Set(float64(res.Complete))
	Conversations.WithLabelValues("survivors").Set(float64(res.Survivors))
	Conversations.WithLabelValues("train").Set(float64(res.Train))
	Conversations.WithLabelValues("val").Set(float64(res.Val))
}

// RunFailed records a run that aborted.
func RunFailed() {
	RunsTotal.WithLabelValues("error").Inc()
}

// SinkFailed records a failed sink delivery.
func SinkFailed(sink string) {
	SinkErrorsTotal.WithLabelValues(sink).Inc()
}
