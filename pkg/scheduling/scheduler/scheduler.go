package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work.
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements Task.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// TaskInfo describes a scheduled task.
type TaskInfo struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time tasks
	Created  time.Time
}

// Scheduler runs one-time, repeating, and cron tasks. It is the scheduled
// task abstraction behind background activities such as the leaky bucket
// drain: each task is addressed by its own handle (the id), separate from
// any interval configuration the owner holds.
type Scheduler interface {
	// Basic scheduling
	Schedule(id string, task Task, runAt time.Time) error
	ScheduleAfter(id string, task Task, delay time.Duration) error
	ScheduleRepeating(id string, task Task, interval time.Duration) error

	// Cron scheduling
	ScheduleCron(id string, cronExpr string, task Task) error

	// Task management
	Cancel(id string) bool
	CancelAll()
	List() []TaskInfo

	// Lifecycle
	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	Location     *time.Location // For cron scheduling
	TickInterval time.Duration  // How often to check for ready tasks (default: 50ms)
	MaxTasks     int            // Maximum number of scheduled tasks (default: 10000)
}

type scheduledTask struct {
	id           string
	task         Task
	runAt        time.Time
	interval     time.Duration
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	location     *time.Location
	tickInterval time.Duration
	maxTasks     int
	cronParser   cron.Parser

	mu      sync.RWMutex
	tasks   map[string]*scheduledTask
	ticker  *time.Ticker
	done    chan struct{}
	running bool
	wg      sync.WaitGroup
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10000
	}

	return &scheduler{
		location:     location,
		tickInterval: tickInterval,
		maxTasks:     maxTasks,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		tasks:        make(map[string]*scheduledTask),
		done:         make(chan struct{}),
	}
}

func (s *scheduler) validateID(id string) error {
	if id == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("task ID too long (max 255 characters)")
	}
	return nil
}

func (s *scheduler) add(st *scheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[st.id]; exists {
		return fmt.Errorf("task with ID %q already exists, use a different ID or cancel the existing task first", st.id)
	}
	if len(s.tasks) >= s.maxTasks {
		return fmt.Errorf("cannot schedule task: maximum number of tasks (%d) reached", s.maxTasks)
	}

	s.tasks[st.id] = st
	return nil
}

func (s *scheduler) Schedule(id string, task Task, runAt time.Time) error {
	if err := s.validateID(id); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if runAt.IsZero() {
		return fmt.Errorf("task run time cannot be zero")
	}

	return s.add(&scheduledTask{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

func (s *scheduler) ScheduleRepeating(id string, task Task, interval time.Duration) error {
	if err := s.validateID(id); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	return s.add(&scheduledTask{
		id:       id,
		task:     task,
		runAt:    time.Now(),
		interval: interval,
		created:  time.Now(),
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task Task) error {
	if err := s.validateID(id); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if cronExpr == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}

	schedule, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	now := time.Now().In(s.location)
	return s.add(&scheduledTask{
		id:           id,
		task:         task,
		runAt:        schedule.Next(now),
		cronSchedule: schedule,
		created:      time.Now(),
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*scheduledTask)
}

func (s *scheduler) List() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, TaskInfo{
			ID:       t.id,
			RunAt:    t.runAt,
			Interval: t.interval,
			Created:  t.created,
		})
	}

	// Sort by run time
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].RunAt.Before(tasks[j].RunAt)
	})

	return tasks
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	s.running = true
	s.ticker = time.NewTicker(s.tickInterval)

	go s.run()
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.done)
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.wg.Wait()
	}()

	return stopped
}

func (s *scheduler) run() {
	defer func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.processReadyTasks()
		}
	}
}

func (s *scheduler) processReadyTasks() {
	now := time.Now()

	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return
	}

	readyTasks := make([]*scheduledTask, 0, len(s.tasks))

	for id, task := range s.tasks {
		if now.After(task.runAt) || now.Equal(task.runAt) {
			readyTasks = append(readyTasks, task)

			// Handle rescheduling
			if task.interval > 0 {
				task.runAt = now.Add(task.interval)
			} else if task.cronSchedule != nil {
				task.runAt = task.cronSchedule.Next(now.In(s.location))
			} else {
				delete(s.tasks, id)
			}
		}
	}
	s.mu.Unlock()

	for _, task := range readyTasks {
		s.wg.Add(1)
		go func(t *scheduledTask) {
			defer s.wg.Done()
			defer func() {
				// A panicking task must not take the scheduler down.
				_ = recover()
			}()
			_ = t.task.Execute(context.Background())
		}(task)
	}
}
