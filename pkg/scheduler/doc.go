// Package scheduler provides a delayed and periodic task scheduler backed by
// a fixed pool of workers.
//
// Tasks are ordered in a time-indexed min-heap; workers sleep until the
// earliest task is due and are woken whenever the head of the heap changes,
// so no goroutine ever polls. Submissions return a Handle that supports
// status queries, cooperative cancellation, and awaiting the task's outcome.
//
// Basic usage:
//
//	s, err := scheduler.New(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Shutdown(5 * time.Second)
//
//	handle, err := s.Schedule(scheduler.TaskFunc(func(ctx context.Context) error {
//		fmt.Println("hello")
//		return nil
//	}), 100*time.Millisecond)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := handle.AwaitTimeout(time.Second); err != nil {
//		log.Printf("task failed: %v", err)
//	}
//
// Periodic tasks use fixed-delay semantics: the next run is scheduled period
// after the previous run completes, so runs of the same task never overlap.
// Cron expressions are supported through ScheduleCron.
//
// For Prometheus instrumentation wrap the scheduler with NewWithMetrics or
// NewWithConfigAndMetrics. For cross-process mutual exclusion of periodic
// work see the distributed subpackage.
package scheduler
