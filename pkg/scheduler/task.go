package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	tperrors "github.com/vnykmshr/tempo/pkg/common/errors"
)

// Task represents a unit of work executed by the scheduler.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Callable is a result-producing unit of work. The value it returns is
// delivered to callers through the task's Handle.
type Callable interface {
	Call(ctx context.Context) (interface{}, error)
}

// CallableFunc is a function type that implements the Callable interface.
type CallableFunc func(ctx context.Context) (interface{}, error)

// Call implements the Callable interface for CallableFunc.
func (f CallableFunc) Call(ctx context.Context) (interface{}, error) {
	return f(ctx)
}

// taskCallable adapts a Task to the Callable interface used internally.
type taskCallable struct {
	task Task
}

func (tc taskCallable) Call(ctx context.Context) (interface{}, error) {
	return nil, tc.task.Execute(ctx)
}

// State describes where a task is in its lifecycle.
type State int

const (
	// StatePending means the task is waiting in the ready-structure for its due time.
	StatePending State = iota

	// StateRunning means a worker is currently executing the task's action.
	StateRunning

	// StateCancelled means the task was cancelled and will not run again.
	StateCancelled

	// StateCompleted means a one-shot task finished its run.
	StateCompleted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// scheduledTask is the scheduler-internal record for a submitted task.
// All mutable fields are guarded by the owning scheduler's lock.
type scheduledTask struct {
	seq       uint64
	call      Callable
	dueAt     time.Time
	period    time.Duration // 0 for one-shot tasks
	cronNext  cron.Schedule // non-nil for cron tasks
	state     State
	cancelled bool // deferred cancellation, observed after the current run
	heapIndex int
	handle    *Handle
}

func (t *scheduledTask) periodic() bool {
	return t.period > 0 || t.cronNext != nil
}

// Handle is the caller-visible proxy for a scheduled task. Callers use it to
// query status, cancel, and await the task's outcome; they never touch the
// task record itself.
type Handle struct {
	s    *scheduler
	task *scheduledTask
	done chan struct{} // closed when the task reaches a terminal state

	// value and err are guarded by s.mu and are immutable once done is closed.
	value     interface{}
	err       error
	completed bool
}

// ID returns the task's monotonically increasing identifier. Among tasks with
// identical due times, lower IDs execute first.
func (h *Handle) ID() uint64 {
	return h.task.seq
}

// State returns the task's current lifecycle state.
func (h *Handle) State() State {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.task.state
}

// Done reports whether the task reached a terminal state (completed or
// cancelled). Periodic tasks only become done when cancelled or when the
// scheduler shuts down.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancelled reports whether the task was cancelled. This is true as soon as
// Cancel is accepted, even while a final run is still in flight.
func (h *Handle) Cancelled() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.task.cancelled || h.task.state == StateCancelled
}

// Cancel requests cancellation of the task.
//
// A pending task is removed from the ready-structure and will never run; a
// running task finishes its current execution but never runs again
// (cooperative cancellation, the action is not interrupted). Cancel returns
// true if this call changed the task's fate and false if the task was already
// terminal or already marked for cancellation.
func (h *Handle) Cancel() bool {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t := h.task
	switch t.state {
	case StatePending:
		s.remove(t)
		t.state = StateCancelled
		t.cancelled = true
		h.complete(nil, tperrors.ErrCancelled)
		// A worker may be sleeping until this task's due time.
		s.broadcast()
		return true
	case StateRunning:
		if t.cancelled {
			return false
		}
		t.cancelled = true
		return true
	default:
		return false
	}
}

// Await blocks until the task reaches a terminal state or ctx is done.
// It returns the task's result value (nil for plain Tasks) and the error the
// task ended with: the action's own error, ErrCancelled, ErrStopped, or, if
// ctx expired first, ErrTimeout / ctx.Err().
func (h *Handle) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-h.done:
		h.s.mu.Lock()
		defer h.s.mu.Unlock()
		return h.value, h.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, tperrors.ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// AwaitTimeout is Await with a plain timeout instead of a context.
func (h *Handle) AwaitTimeout(timeout time.Duration) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.Await(ctx)
}

// complete records the terminal outcome and releases Await callers.
// Must be called with s.mu held; safe to call more than once.
func (h *Handle) complete(value interface{}, err error) {
	if h.completed {
		return
	}
	h.completed = true
	h.value = value
	h.err = err
	close(h.done)
}
