package concurrency

import (
	"context"
	"sync"
	"time"

	"github.com/vnykmshr/goadmit/pkg/admission/tokenbucket"
	"github.com/vnykmshr/goadmit/pkg/common/validation"
)

// Operation is a unit of work submitted to the limiter.
type Operation func(ctx context.Context) error

// Limiter bounds the number of simultaneously in-flight operations.
// Excess callers wait in a strict FIFO queue until a slot frees or their
// context expires.
type Limiter interface {
	// Execute runs op once a concurrency slot is available, waiting in
	// FIFO order behind earlier callers if none is free. The operation's
	// error is returned unchanged. If ctx expires while the caller is
	// still queued, the caller is removed from the queue and Execute
	// returns a queue-timeout error; other queued callers keep their
	// positions.
	Execute(ctx context.Context, op Operation) error

	// ExecuteWithID is Execute with a caller-chosen operation id, which
	// appears in the ActiveRequests snapshot while op runs.
	ExecuteWithID(ctx context.Context, id string, op Operation) error

	// TryExecute runs op only if a slot is free right now. It never
	// queues; when all slots are busy it returns a rejection error
	// without running op.
	TryExecute(ctx context.Context, op Operation) error

	// SetMaxConcurrent changes the slot count. Raising it admits queued
	// callers immediately; lowering it takes effect as running
	// operations complete.
	SetMaxConcurrent(maxConcurrent int)

	// MaxConcurrent returns the slot count.
	MaxConcurrent() int

	// InFlight returns the number of operations currently running.
	InFlight() int

	// Waiting returns the number of callers queued for a slot.
	Waiting() int

	// ActiveRequests returns a snapshot of in-flight operation ids and
	// their start times.
	ActiveRequests() map[string]time.Time
}

// DefaultMaxConcurrent is the slot count used when a Config leaves it zero.
const DefaultMaxConcurrent = 5

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// MaxConcurrent is the number of operations allowed to run at once.
	// If zero, DefaultMaxConcurrent is used.
	MaxConcurrent int

	// Clock provides the current time. If nil, the system clock is used.
	Clock tokenbucket.Clock
}

// waiter is one queued caller. ready is closed exactly once, by the
// releasing goroutine, when the waiter is granted a slot.
type waiter struct {
	id         string
	enqueuedAt time.Time
	ready      chan struct{}
}

// limiter implements the Limiter interface.
type limiter struct {
	mu            sync.Mutex
	maxConcurrent int
	inFlight      int
	waiters       []*waiter
	active        map[string]time.Time
	clock         tokenbucket.Clock
}

// New creates a concurrency limiter with the given slot count.
func New(maxConcurrent int) (Limiter, error) {
	return NewWithConfig(Config{MaxConcurrent: maxConcurrent})
}

// NewWithConfig creates a concurrency limiter from config. Construction
// fails immediately on a negative slot count.
func NewWithConfig(config Config) (Limiter, error) {
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	if err := validation.ValidatePositive("concurrency", "maxConcurrent", config.MaxConcurrent); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	return &limiter{
		maxConcurrent: config.MaxConcurrent,
		active:        make(map[string]time.Time),
		clock:         config.Clock,
	}, nil
}
