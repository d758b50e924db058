package distributed

import (
	"context"

	"github.com/vnykmshr/tempo/pkg/scheduler"
)

// Guard wraps a task so each run executes only while holding the lease.
// Instances that fail to acquire the lease skip the run silently, so a
// periodic task guarded this way runs on exactly one instance per period.
// The lease is released after the run so another instance can take over;
// long runs should renew the lease from inside the task.
func Guard(lease Lease, task scheduler.Task) scheduler.Task {
	return scheduler.TaskFunc(func(ctx context.Context) error {
		held, err := lease.TryAcquire(ctx)
		if err != nil {
			return err
		}
		if !held {
			return nil
		}
		defer func() {
			// Release failures leave the lease to expire via its TTL.
			_ = lease.Release(context.WithoutCancel(ctx))
		}()

		return task.Execute(ctx)
	})
}

// GuardFunc is Guard for a bare function.
func GuardFunc(lease Lease, fn func(ctx context.Context) error) scheduler.Task {
	return Guard(lease, scheduler.TaskFunc(fn))
}
