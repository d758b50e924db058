/*
Package tempo provides a delayed and periodic task scheduler for Go.

Scheduling (pkg/scheduler):
  - scheduler: One-shot delayed tasks, fixed-delay periodic tasks, and
    cron-expression scheduling, driven by a pool of workers that wait
    efficiently for the next due task
  - scheduler/distributed: Redis-backed leases so periodic tasks fire on
    at most one application instance

Supporting packages:
  - metrics: Prometheus instrumentation for scheduler components
  - common/errors: Shared sentinel and structured error types
  - common/validation: Configuration validation helpers

Example usage:

	import (
		"github.com/vnykmshr/tempo/pkg/scheduler"
	)

	s, _ := scheduler.New(4) // 4 workers
	defer s.Shutdown(5 * time.Second)

	handle, _ := s.Schedule(scheduler.TaskFunc(func(ctx context.Context) error {
		return sendReminder()
	}), 30*time.Second)

	if _, err := handle.AwaitTimeout(time.Minute); err != nil {
		log.Printf("reminder failed: %v", err)
	}
*/
package tempo
