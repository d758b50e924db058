package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vnykmshr/tempo/pkg/metrics"
)

// MetricsScheduler decorates a Scheduler with Prometheus instrumentation.
// It implements both Scheduler and metrics.Instrumentable.
type MetricsScheduler struct {
	inner Scheduler
	name  string

	mu       sync.RWMutex
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a scheduler with default configuration and metrics
// reported under the given name.
func NewWithMetrics(workerCount int, name string) (*MetricsScheduler, error) {
	return NewWithConfigAndMetrics(Config{WorkerCount: workerCount}, name, metrics.DefaultConfig())
}

// NewWithConfigAndMetrics creates a scheduler from cfg and wraps it with
// metrics instrumentation.
func NewWithConfigAndMetrics(cfg Config, name string, mcfg metrics.Config) (*MetricsScheduler, error) {
	inner, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	ms := &MetricsScheduler{inner: inner, name: name}
	if mcfg.Enabled {
		if err := ms.EnableMetrics(mcfg); err != nil {
			inner.Shutdown(0)
			return nil, err
		}
	}
	return ms, nil
}

// EnableMetrics implements metrics.Instrumentable.
func (ms *MetricsScheduler) EnableMetrics(cfg metrics.Config) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if cfg.Registry == nil {
		ms.registry = metrics.DefaultRegistry
	} else {
		ms.registry = metrics.NewRegistry(cfg.Registry)
	}
	ms.enabled = true
	ms.registry.SchedulerWorkers.WithLabelValues(ms.name).Set(float64(ms.inner.WorkerCount()))
	return nil
}

// DisableMetrics implements metrics.Instrumentable.
func (ms *MetricsScheduler) DisableMetrics() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.enabled = false
}

// MetricsEnabled implements metrics.Instrumentable.
func (ms *MetricsScheduler) MetricsEnabled() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.enabled
}

func (ms *MetricsScheduler) observe(fn func(r *metrics.Registry)) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.enabled && ms.registry != nil {
		fn(ms.registry)
	}
}

// metricsCallable wraps a task's action with counters and a duration
// histogram.
type metricsCallable struct {
	ms   *MetricsScheduler
	call Callable
}

func (mc metricsCallable) Call(ctx context.Context) (interface{}, error) {
	name := mc.ms.name
	mc.ms.observe(func(r *metrics.Registry) {
		r.TasksExecuted.WithLabelValues(name).Inc()
	})

	start := time.Now()
	value, err := mc.call.Call(ctx)
	elapsed := time.Since(start)

	mc.ms.observe(func(r *metrics.Registry) {
		r.TaskExecutionDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		if err != nil {
			r.TasksFailed.WithLabelValues(name).Inc()
		} else {
			r.TasksCompleted.WithLabelValues(name).Inc()
		}
	})
	return value, err
}

func (ms *MetricsScheduler) wrapTask(task Task) Task {
	return TaskFunc(func(ctx context.Context) error {
		_, err := metricsCallable{ms, taskCallable{task}}.Call(ctx)
		return err
	})
}

func (ms *MetricsScheduler) scheduled(h *Handle, err error) (*Handle, error) {
	if err != nil {
		return nil, err
	}
	ms.observe(func(r *metrics.Registry) {
		r.TasksScheduled.WithLabelValues(ms.name).Inc()
		r.SchedulerPending.WithLabelValues(ms.name).Set(float64(ms.inner.PendingCount()))
	})
	return h, nil
}

func (ms *MetricsScheduler) Schedule(task Task, delay time.Duration) (*Handle, error) {
	if task == nil {
		return ms.scheduled(ms.inner.Schedule(task, delay))
	}
	return ms.scheduled(ms.inner.Schedule(ms.wrapTask(task), delay))
}

func (ms *MetricsScheduler) ScheduleFunc(fn func(ctx context.Context) error, delay time.Duration) (*Handle, error) {
	if fn == nil {
		return ms.scheduled(ms.inner.ScheduleFunc(fn, delay))
	}
	return ms.Schedule(TaskFunc(fn), delay)
}

func (ms *MetricsScheduler) ScheduleCallable(call Callable, delay time.Duration) (*Handle, error) {
	if call == nil {
		return ms.scheduled(ms.inner.ScheduleCallable(call, delay))
	}
	return ms.scheduled(ms.inner.ScheduleCallable(metricsCallable{ms, call}, delay))
}

func (ms *MetricsScheduler) ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) (*Handle, error) {
	if task == nil {
		return ms.scheduled(ms.inner.ScheduleAtFixedRate(task, initialDelay, period))
	}
	return ms.scheduled(ms.inner.ScheduleAtFixedRate(ms.wrapTask(task), initialDelay, period))
}

func (ms *MetricsScheduler) ScheduleCron(task Task, spec string) (*Handle, error) {
	if task == nil {
		return ms.scheduled(ms.inner.ScheduleCron(task, spec))
	}
	return ms.scheduled(ms.inner.ScheduleCron(ms.wrapTask(task), spec))
}

// Cancel cancels the task behind h, recording the cancellation when it takes
// effect. Equivalent to h.Cancel otherwise.
func (ms *MetricsScheduler) Cancel(h *Handle) bool {
	ok := h.Cancel()
	if ok {
		ms.observe(func(r *metrics.Registry) {
			r.TasksCancelled.WithLabelValues(ms.name).Inc()
			r.SchedulerPending.WithLabelValues(ms.name).Set(float64(ms.inner.PendingCount()))
		})
	}
	return ok
}

func (ms *MetricsScheduler) PendingCount() int {
	return ms.inner.PendingCount()
}

func (ms *MetricsScheduler) WorkerCount() int {
	return ms.inner.WorkerCount()
}

func (ms *MetricsScheduler) Shutdown(drainTimeout time.Duration) DrainStatus {
	status := ms.inner.Shutdown(drainTimeout)
	ms.observe(func(r *metrics.Registry) {
		r.SchedulerWorkers.WithLabelValues(ms.name).Set(0)
		r.SchedulerPending.WithLabelValues(ms.name).Set(0)
	})
	return status
}
