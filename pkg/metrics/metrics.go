// Package metrics provides Prometheus instrumentation for the rotation
// core and the pipeline runner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeySelectionsTotal counts selector picks per provider.
	KeySelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_key_selections_total",
			Help: "Total number of key selections per provider.",
		},
		[]string{"provider"},
	)

	// CallOutcomesTotal counts attempt outcomes per provider.
	CallOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_call_outcomes_total",
			Help: "Total call attempts by outcome.",
		},
		[]string{"provider", "outcome"}, // outcome: "success", "failure", "rate_limited"
	)

	// BackoffSecondsTotal accumulates time spent in retry backoff.
	BackoffSecondsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_backoff_seconds_total",
			Help: "Total seconds spent sleeping between retry attempts.",
		},
		[]string{"provider"},
	)

	// ExhaustedTotal counts executions that failed every attempt.
	ExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_exhausted_total",
			Help: "Total executions that exhausted their attempt budget.",
		},
		[]string{"provider"},
	)

	// AvailableKeys tracks how many keys are currently selectable.
	AvailableKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rotation_available_keys",
			Help: "Number of keys currently available per provider.",
		},
		[]string{"provider"},
	)

	// QuotaUsed tracks today's call count against the daily quota.
	QuotaUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rotation_quota_used",
			Help: "Calls counted against today's daily quota per provider.",
		},
		[]string{"provider"},
	)

	// PipelineStageSeconds tracks per-stage latency of pipeline runs.
	PipelineStageSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_seconds",
			Help:    "Pipeline stage latency in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	// PipelineRunsTotal counts pipeline runs by final status.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total pipeline runs by status.",
		},
		[]string{"status"}, // "success" or "error"
	)
)
