package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/goadmit/internal/testutil"
)

func TestScheduler_BasicScheduling(t *testing.T) {
	s := New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	var executed int32
	task := TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	})

	// Test immediate scheduling
	if err := s.Schedule("test1", task, time.Now()); err != nil {
		t.Fatal(err)
	}

	// Test delayed scheduling
	if err := s.ScheduleAfter("test2", task, 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	// Wait for both tasks to execute
	testutil.WaitForInt32(t, &executed, 2, 500*time.Millisecond)
}

func TestScheduler_RepeatingTask(t *testing.T) {
	s := New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	var executed int32
	task := TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	})

	if err := s.ScheduleRepeating("repeat", task, 75*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	// Wait for at least 3 executions (should happen within 300ms)
	testutil.Eventually(t, func() bool {
		return atomic.LoadInt32(&executed) >= 3
	}, 500*time.Millisecond, 20*time.Millisecond)
}

func TestScheduler_CronScheduling(t *testing.T) {
	s := New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	var executed int32
	task := TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	})

	// Schedule to run every second
	if err := s.ScheduleCron("cron", "* * * * * *", task); err != nil {
		t.Fatal(err)
	}

	// Wait for at least one execution
	testutil.Eventually(t, func() bool {
		return atomic.LoadInt32(&executed) > 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidCronExpression(t *testing.T) {
	s := New()

	task := TaskFunc(func(_ context.Context) error { return nil })

	if err := s.ScheduleCron("bad", "not a cron expr", task); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestScheduler_TaskManagement(t *testing.T) {
	s := New()
	defer func() { <-s.Stop() }()

	task := TaskFunc(func(_ context.Context) error {
		return nil
	})

	// Test duplicate ID prevention
	if err := s.Schedule("dup", task, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := s.Schedule("dup", task, time.Now().Add(time.Hour)); err == nil {
		t.Error("should not allow duplicate task IDs")
	}

	// Test task listing
	tasks := s.List()
	if len(tasks) != 1 {
		t.Errorf("expected 1 task, got %d", len(tasks))
	}

	// Test cancellation
	if !s.Cancel("dup") {
		t.Error("should successfully cancel existing task")
	}

	if s.Cancel("nonexistent") {
		t.Error("should return false for nonexistent task")
	}

	// Test CancelAll
	if err := s.Schedule("a", task, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.Schedule("b", task, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	s.CancelAll()
	if len(s.List()) != 0 {
		t.Error("CancelAll should remove all tasks")
	}
}

func TestScheduler_Validation(t *testing.T) {
	s := New()

	task := TaskFunc(func(_ context.Context) error { return nil })

	tests := []struct {
		name string
		call func() error
	}{
		{"empty id", func() error { return s.Schedule("", task, time.Now()) }},
		{"nil task", func() error { return s.Schedule("id", nil, time.Now()) }},
		{"zero time", func() error { return s.Schedule("id", task, time.Time{}) }},
		{"non-positive interval", func() error { return s.ScheduleRepeating("id", task, 0) }},
		{"empty cron", func() error { return s.ScheduleCron("id", "", task) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestScheduler_DoubleStart(t *testing.T) {
	s := New()
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start should fail while running")
	}
}

func TestScheduler_CancelStopsRepeating(t *testing.T) {
	s := NewWithConfig(Config{TickInterval: 10 * time.Millisecond})
	defer func() { <-s.Stop() }()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	var executed int32
	task := TaskFunc(func(_ context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	})

	if err := s.ScheduleRepeating("repeat", task, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	testutil.WaitForInt32(t, &executed, 1, time.Second)
	s.Cancel("repeat")

	count := atomic.LoadInt32(&executed)
	time.Sleep(100 * time.Millisecond)
	// Allow one in-flight execution that raced the cancel.
	if got := atomic.LoadInt32(&executed); got > count+1 {
		t.Errorf("task kept running after cancel: %d -> %d", count, got)
	}
}
