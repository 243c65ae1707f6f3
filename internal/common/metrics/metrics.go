package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_responses_total",
			Help: "Chat responses returned, by source and intent",
		},
		[]string{"source", "intent"},
	)

	SafetyOverridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_safety_overrides_total",
			Help: "Safety gate overrides, by kind",
		},
		[]string{"kind"},
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_provider_requests_total",
			Help: "Model provider attempts, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ResponseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_response_duration_seconds",
			Help:    "End-to-end response generation time",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"source"},
	)

	ExchangeLogFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_exchange_log_failures_total",
			Help: "Exchange log writes that failed, by sink",
		},
		[]string{"sink"},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_escalations_total",
			Help: "Escalation notifications, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)
