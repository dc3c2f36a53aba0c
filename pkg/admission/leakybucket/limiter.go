package leakybucket

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnykmshr/goadmit/pkg/admission/tokenbucket"
	"github.com/vnykmshr/goadmit/pkg/common/validation"
	"github.com/vnykmshr/goadmit/pkg/metrics"
	"github.com/vnykmshr/goadmit/pkg/scheduling/scheduler"
)

// Result is the outcome of offering a request to the bucket.
type Result struct {
	// Accepted reports whether the request was queued within capacity.
	Accepted bool

	// ID identifies the queued request. Empty when rejected.
	ID string

	// QueueSize is the queue length after the decision.
	QueueSize int

	// EstimatedWait is how long the queue takes to drain at the
	// configured leak rate: queueSize/leakRate intervals.
	EstimatedWait time.Duration
}

// Limiter smooths bursts by queueing requests in a bounded FIFO and
// draining them at a constant rate. A request is admitted when it fits
// in the queue; a full queue rejects it.
type Limiter interface {
	// Allow reports whether a request fits in the queue now. It does not block.
	Allow() bool

	// Add offers one request to the queue and returns the full result,
	// including the queue size and an estimated drain wait. It does not block.
	Add() Result

	// QueueLen returns the current queue length.
	QueueLen() int

	// Capacity returns the maximum queue length.
	Capacity() int

	// LeakRate returns the number of requests drained per interval.
	LeakRate() int

	// LeakInterval returns the drain interval.
	LeakInterval() time.Duration

	// Draining reports whether the background drain task is scheduled.
	// The task exists exactly while the queue is non-empty.
	Draining() bool

	// Close cancels the background drain task and releases the owned
	// scheduler. The limiter keeps working in lazy (on-call) drain mode.
	Close() error
}

// queuedRequest is one FIFO entry.
type queuedRequest struct {
	id         string
	enqueuedAt time.Time
}

// DefaultInterval is the leak interval used when a Config leaves it zero.
const DefaultInterval = time.Second

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Capacity is the maximum number of queued requests.
	Capacity int

	// LeakRate is the number of requests drained per leak interval.
	LeakRate int

	// LeakInterval is the duration of one drain quantum.
	// If zero, DefaultInterval is used.
	LeakInterval time.Duration

	// Clock provides the current time. If nil, SystemClock is used.
	Clock tokenbucket.Clock

	// Scheduler runs the background drain task. If nil, the limiter
	// owns a private scheduler started on first use.
	Scheduler scheduler.Scheduler

	// Name labels this limiter in metrics.
	Name string

	// Metrics configures Prometheus instrumentation. Zero value disables it.
	Metrics metrics.Config
}

// leakyBucket implements the Limiter interface.
//
// The drain task handle (drainID, draining) is state of its own, kept
// strictly apart from the configured leakInterval.
type leakyBucket struct {
	mu           sync.Mutex
	capacity     int
	leakRate     int
	leakInterval time.Duration
	queue        []queuedRequest
	lastLeak     time.Time
	clock        tokenbucket.Clock

	sched        scheduler.Scheduler
	ownSched     bool
	schedStarted bool
	drainID      string
	draining     bool
	closed       bool

	name     string
	registry *metrics.Registry
}

// New creates a leaky bucket limiter with an empty queue.
func New(capacity, leakRate int, leakInterval time.Duration) (Limiter, error) {
	return NewWithConfig(Config{
		Capacity:     capacity,
		LeakRate:     leakRate,
		LeakInterval: leakInterval,
	})
}

// NewWithMetrics creates a leaky bucket limiter with metrics enabled.
func NewWithMetrics(capacity, leakRate int, leakInterval time.Duration, name string) (Limiter, error) {
	return NewWithConfig(Config{
		Capacity:     capacity,
		LeakRate:     leakRate,
		LeakInterval: leakInterval,
		Name:         name,
		Metrics:      metrics.DefaultConfig(),
	})
}

// NewWithConfig creates a leaky bucket limiter from config. Construction
// fails immediately on non-positive capacity, rate, or interval.
func NewWithConfig(config Config) (Limiter, error) {
	if config.LeakInterval == 0 {
		config.LeakInterval = DefaultInterval
	}
	if err := validation.ValidatePositive("leakybucket", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("leakybucket", "leakRate", config.LeakRate); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("leakybucket", "leakInterval", config.LeakInterval); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	sched := config.Scheduler
	ownSched := false
	if sched == nil {
		tick := config.LeakInterval / 2
		if tick < 10*time.Millisecond {
			tick = 10 * time.Millisecond
		}
		sched = scheduler.NewWithConfig(scheduler.Config{TickInterval: tick})
		ownSched = true
	}

	lb := &leakyBucket{
		capacity:     config.Capacity,
		leakRate:     config.LeakRate,
		leakInterval: config.LeakInterval,
		queue:        make([]queuedRequest, 0, config.Capacity),
		lastLeak:     config.Clock.Now(),
		clock:        config.Clock,
		sched:        sched,
		ownSched:     ownSched,
		drainID:      "leakybucket-drain-" + uuid.NewString(),
		name:         config.Name,
	}

	if config.Metrics.Enabled {
		lb.registry = metrics.DefaultRegistry
		if config.Metrics.Registry != nil {
			lb.registry = metrics.NewRegistry(config.Metrics.Registry)
		}
	}

	return lb, nil
}
