package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	tperrors "github.com/vnykmshr/tempo/pkg/common/errors"
	"github.com/vnykmshr/tempo/pkg/common/validation"
)

// Scheduler executes tasks after a delay, at a fixed repetition rate, or on a
// cron expression, using a fixed pool of workers. Workers sleep until the
// earliest pending task is due; there is no polling.
type Scheduler interface {
	// Schedule runs task once after delay has elapsed.
	Schedule(task Task, delay time.Duration) (*Handle, error)

	// ScheduleFunc is Schedule for a bare function.
	ScheduleFunc(fn func(ctx context.Context) error, delay time.Duration) (*Handle, error)

	// ScheduleCallable runs call once after delay; the returned value is
	// available through Handle.Await.
	ScheduleCallable(call Callable, delay time.Duration) (*Handle, error)

	// ScheduleAtFixedRate runs task repeatedly: first after initialDelay,
	// then again period after each run completes (fixed-delay semantics,
	// runs of the same task never overlap).
	ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) (*Handle, error)

	// ScheduleCron runs task on the given cron expression. Expressions use
	// the six-field form with seconds, plus descriptors such as @hourly.
	ScheduleCron(task Task, spec string) (*Handle, error)

	// PendingCount returns the number of tasks waiting for their due time.
	PendingCount() int

	// WorkerCount returns the configured number of workers.
	WorkerCount() int

	// Shutdown stops the scheduler: no new submissions are accepted, pending
	// tasks are failed with ErrStopped, and in-flight runs are given
	// drainTimeout to finish. Safe to call more than once.
	Shutdown(drainTimeout time.Duration) DrainStatus
}

// DrainStatus reports how a shutdown concluded.
type DrainStatus int

const (
	// Drained means all in-flight task runs finished within the timeout.
	Drained DrainStatus = iota

	// Forced means the drain timeout elapsed with runs still in flight.
	Forced
)

// String returns a human-readable drain status.
func (d DrainStatus) String() string {
	switch d {
	case Drained:
		return "drained"
	case Forced:
		return "forced"
	default:
		return "unknown"
	}
}

const (
	// DefaultMaxPending caps the pending heap when Config.MaxPending is zero.
	DefaultMaxPending = 10000
)

// Config holds scheduler configuration.
type Config struct {
	// WorkerCount is the number of worker goroutines. Must be positive.
	WorkerCount int

	// MaxPending caps the number of tasks waiting for their due time.
	// Zero selects DefaultMaxPending; negative means unlimited.
	MaxPending int

	// Location is the time zone used to evaluate cron expressions.
	// Defaults to time.Local.
	Location *time.Location

	// PanicHandler, when set, is invoked with the recovered value if a task
	// panics; the run is then treated as successful. When nil, a panicking
	// run fails with an error carrying the stack trace.
	PanicHandler func(r interface{})
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
		MaxPending:  DefaultMaxPending,
		Location:    time.Local,
	}
}

type scheduler struct {
	cfg Config

	mu      sync.Mutex
	pending taskHeap
	wake    chan struct{} // closed and replaced on every broadcast
	seq     uint64
	running bool

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	status       DrainStatus
}

// New creates a started scheduler with workerCount workers and default
// configuration.
func New(workerCount int) (Scheduler, error) {
	cfg := DefaultConfig()
	cfg.WorkerCount = workerCount
	return NewWithConfig(cfg)
}

// NewWithConfig creates a started scheduler with the given configuration.
func NewWithConfig(cfg Config) (Scheduler, error) {
	if err := validation.ValidatePositive("scheduler", "WorkerCount", cfg.WorkerCount); err != nil {
		return nil, err
	}
	if cfg.MaxPending == 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &scheduler{
		cfg:     cfg,
		pending: make(taskHeap, 0, 16),
		wake:    make(chan struct{}),
		running: true,
	}
	s.wg.Add(cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		go s.runWorker()
	}
	return s, nil
}

func (s *scheduler) Schedule(task Task, delay time.Duration) (*Handle, error) {
	if err := validation.ValidateNotNil("scheduler", "task", task); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("scheduler", "delay", delay); err != nil {
		return nil, err
	}
	return s.submit(taskCallable{task}, time.Now().Add(delay), 0, nil)
}

func (s *scheduler) ScheduleFunc(fn func(ctx context.Context) error, delay time.Duration) (*Handle, error) {
	if fn == nil {
		return nil, validation.ValidateNotNil("scheduler", "fn", nil)
	}
	return s.Schedule(TaskFunc(fn), delay)
}

func (s *scheduler) ScheduleCallable(call Callable, delay time.Duration) (*Handle, error) {
	if err := validation.ValidateNotNil("scheduler", "call", call); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("scheduler", "delay", delay); err != nil {
		return nil, err
	}
	return s.submit(call, time.Now().Add(delay), 0, nil)
}

func (s *scheduler) ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) (*Handle, error) {
	if err := validation.ValidateNotNil("scheduler", "task", task); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("scheduler", "initialDelay", initialDelay); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("scheduler", "period", period); err != nil {
		return nil, err
	}
	return s.submit(taskCallable{task}, time.Now().Add(initialDelay), period, nil)
}

func (s *scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

func (s *scheduler) WorkerCount() int {
	return s.cfg.WorkerCount
}

// submit enqueues a new task record and wakes a worker. The zero value of
// period together with a nil cron schedule makes the task one-shot.
func (s *scheduler) submit(call Callable, dueAt time.Time, period time.Duration, next cron.Schedule) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, tperrors.ErrStopped
	}
	if s.cfg.MaxPending > 0 && s.pending.Len() >= s.cfg.MaxPending {
		return nil, tperrors.NewOperationError("scheduler", "submit", tperrors.ErrCapacityExceeded).
			WithContext(fmt.Sprintf("max pending tasks %d reached", s.cfg.MaxPending))
	}

	s.seq++
	t := &scheduledTask{
		seq:      s.seq,
		call:     call,
		dueAt:    dueAt,
		period:   period,
		cronNext: next,
		state:    StatePending,
	}
	t.handle = &Handle{s: s, task: t, done: make(chan struct{})}
	s.push(t)
	s.broadcast()
	return t.handle, nil
}

// broadcast wakes every goroutine blocked on the current wake channel.
// Must be called with s.mu held.
func (s *scheduler) broadcast() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// runWorker is the worker loop. It sleeps until the earliest pending task is
// due, or until a broadcast announces that the head of the heap changed.
func (s *scheduler) runWorker() {
	defer s.wg.Done()

	s.mu.Lock()
	for {
		if !s.running {
			s.mu.Unlock()
			return
		}

		t := s.pending.peek()
		if t == nil {
			wake := s.wake
			s.mu.Unlock()
			<-wake
			s.mu.Lock()
			continue
		}

		if delay := time.Until(t.dueAt); delay > 0 {
			wake := s.wake
			s.mu.Unlock()
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-wake:
				timer.Stop()
			}
			s.mu.Lock()
			continue
		}

		s.pop()
		t.state = StateRunning
		s.mu.Unlock()

		value, err := s.runTask(t)

		s.mu.Lock()
		s.finish(t, value, err)
	}
}

// runTask executes the task's action outside the lock, converting panics into
// errors unless a PanicHandler is configured.
func (s *scheduler) runTask(t *scheduledTask) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if s.cfg.PanicHandler != nil {
				s.cfg.PanicHandler(r)
				value, err = nil, nil
				return
			}
			value = nil
			err = tperrors.NewOperationError("scheduler", "execute", fmt.Errorf("task panicked: %v", r)).
				WithContext(string(debug.Stack()))
		}
	}()
	return t.call.Call(context.Background())
}

// finish settles a task after a run. Must be called with s.mu held.
func (s *scheduler) finish(t *scheduledTask, value interface{}, err error) {
	switch {
	case t.cancelled:
		t.state = StateCancelled
		t.handle.complete(nil, tperrors.ErrCancelled)
	case !t.periodic():
		t.state = StateCompleted
		t.handle.complete(value, err)
	case !s.running:
		t.state = StateCancelled
		t.handle.complete(nil, tperrors.ErrStopped)
	default:
		if t.cronNext != nil {
			t.dueAt = t.cronNext.Next(time.Now().In(s.cfg.Location))
		} else {
			t.dueAt = time.Now().Add(t.period)
		}
		t.state = StatePending
		s.push(t)
		s.broadcast()
	}
}

func (s *scheduler) Shutdown(drainTimeout time.Duration) DrainStatus {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.running = false
		for s.pending.Len() > 0 {
			t := s.pop()
			t.state = StateCancelled
			t.handle.complete(nil, tperrors.ErrStopped)
		}
		s.broadcast()
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(drainTimeout)
		defer timer.Stop()
		select {
		case <-done:
			s.status = Drained
		case <-timer.C:
			s.status = Forced
		}
	})
	return s.status
}
