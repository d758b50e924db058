// Package metrics provides Prometheus instrumentation for tempo components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for tempo components.
type Registry struct {
	// Task Scheduling Metrics
	TasksScheduled        *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TasksCompleted        *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TasksCancelled        *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	SchedulerWorkers      *prometheus.GaugeVec
	SchedulerPending      *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by tempo components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks scheduled",
			},
			[]string{"scheduler_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "tasks_executed_total",
				Help:      "Total number of task executions started",
			},
			[]string{"scheduler_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "tasks_completed_total",
				Help:      "Total number of task executions that completed successfully",
			},
			[]string{"scheduler_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "tasks_failed_total",
				Help:      "Total number of task executions that returned an error",
			},
			[]string{"scheduler_name"},
		),

		TasksCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "tasks_cancelled_total",
				Help:      "Total number of tasks cancelled before completion",
			},
			[]string{"scheduler_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler_name"},
		),

		SchedulerWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "workers",
				Help:      "Number of workers in the scheduler",
			},
			[]string{"scheduler_name"},
		),

		SchedulerPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tempo",
				Subsystem: "scheduler",
				Name:      "pending_tasks",
				Help:      "Number of tasks currently waiting for their due time",
			},
			[]string{"scheduler_name"},
		),
	}
}
