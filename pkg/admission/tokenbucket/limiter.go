package tokenbucket

import (
	"sync"
	"time"

	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
	"github.com/vnykmshr/goadmit/pkg/common/validation"
)

// RetryNever marks a denial that waiting can never turn into an
// admission, such as requesting more tokens than the bucket capacity.
const RetryNever = gaerrors.RetryNever

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the request may proceed now.
	Allowed bool

	// Remaining is the number of tokens left after the decision.
	Remaining int

	// RetryAfter is a backoff hint when the request was denied.
	// It is zero for allowed requests and RetryNever when the
	// request can never succeed.
	RetryAfter time.Duration
}

// Limiter controls how frequently events are allowed to happen using a
// token bucket with quantized refill: tokens are added in whole-interval
// quanta, never fractionally, and the refill phase stays aligned to the
// construction time.
type Limiter interface {
	// Allow reports whether one event may happen now. It does not block.
	Allow() bool

	// AllowN reports whether n events may happen now. It does not block.
	AllowN(n int) bool

	// TryConsume attempts to take n tokens and returns the full decision,
	// including a retry-after hint on denial. It does not block.
	TryConsume(n int) Decision

	// SetRefillRate changes the number of tokens added per interval.
	// It preserves the current capacity.
	SetRefillRate(rate int)

	// SetCapacity changes the bucket capacity. It preserves the current
	// refill rate and clamps the token level to the new capacity.
	SetCapacity(capacity int)

	// Capacity returns the maximum number of tokens the bucket holds.
	Capacity() int

	// RefillRate returns the number of tokens added per interval.
	RefillRate() int

	// RefillInterval returns the refill interval.
	RefillInterval() time.Duration

	// Tokens returns the number of tokens currently available.
	Tokens() int
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// DefaultInterval is the refill interval used when a Config leaves it zero.
const DefaultInterval = time.Second

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Capacity is the maximum number of tokens the bucket can hold.
	Capacity int

	// RefillRate is the number of tokens added per refill interval.
	RefillRate int

	// RefillInterval is the duration of one refill quantum.
	// If zero, DefaultInterval is used.
	RefillInterval time.Duration

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock

	// InitialTokens is the number of tokens to start with.
	// If negative, starts with full capacity.
	InitialTokens int
}

// tokenBucket implements the Limiter interface.
type tokenBucket struct {
	mu             sync.Mutex
	capacity       int
	refillRate     int
	refillInterval time.Duration
	tokens         int
	lastRefill     time.Time
	clock          Clock
}

// New creates a token bucket limiter that starts full.
func New(capacity, refillRate int, refillInterval time.Duration) (Limiter, error) {
	return NewWithConfig(Config{
		Capacity:       capacity,
		RefillRate:     refillRate,
		RefillInterval: refillInterval,
		InitialTokens:  -1, // Start with full capacity
	})
}

// NewWithConfig creates a token bucket limiter from config. Construction
// fails immediately on non-positive capacity, rate, or interval.
func NewWithConfig(config Config) (Limiter, error) {
	if config.RefillInterval == 0 {
		config.RefillInterval = DefaultInterval
	}
	if err := validation.ValidatePositive("tokenbucket", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("tokenbucket", "refillRate", config.RefillRate); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("tokenbucket", "refillInterval", config.RefillInterval); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	initialTokens := config.InitialTokens
	if initialTokens < 0 {
		initialTokens = config.Capacity
	}
	if initialTokens > config.Capacity {
		initialTokens = config.Capacity
	}

	return &tokenBucket{
		capacity:       config.Capacity,
		refillRate:     config.RefillRate,
		refillInterval: config.RefillInterval,
		tokens:         initialTokens,
		lastRefill:     config.Clock.Now(),
		clock:          config.Clock,
	}, nil
}
