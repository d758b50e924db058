package scheduler_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vnykmshr/tempo/pkg/scheduler"
)

func ExampleNew() {
	s, err := scheduler.New(2)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Shutdown(time.Second)

	handle, err := s.Schedule(scheduler.TaskFunc(func(ctx context.Context) error {
		fmt.Println("task ran")
		return nil
	}), 10*time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := handle.AwaitTimeout(time.Second); err != nil {
		log.Fatal(err)
	}
	// Output: task ran
}

func ExampleScheduler_ScheduleCallable() {
	s, err := scheduler.New(1)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Shutdown(time.Second)

	handle, err := s.ScheduleCallable(scheduler.CallableFunc(func(ctx context.Context) (interface{}, error) {
		return 6 * 7, nil
	}), 0)
	if err != nil {
		log.Fatal(err)
	}

	value, err := handle.AwaitTimeout(time.Second)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(value)
	// Output: 42
}

func ExampleScheduler_ScheduleAtFixedRate() {
	s, err := scheduler.New(1)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Shutdown(time.Second)

	runs := make(chan struct{}, 3)
	handle, err := s.ScheduleAtFixedRate(scheduler.TaskFunc(func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	}), 0, 20*time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		<-runs
	}
	handle.Cancel()
	fmt.Println("three runs observed")
	// Output: three runs observed
}
