package fixedwindow

import (
	"sync"
	"time"

	"github.com/vnykmshr/goadmit/pkg/admission/tokenbucket"
	"github.com/vnykmshr/goadmit/pkg/common/validation"
)

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed reports whether the request may proceed now.
	Allowed bool

	// Remaining is the number of admissions left in the current window.
	Remaining int

	// ResetAt is when the current window rolls over and the count resets.
	ResetAt time.Time

	// RetryAfter is a backoff hint when the request was denied. It is the
	// time until ResetAt, and zero for allowed requests.
	RetryAfter time.Duration
}

// Limiter counts admissions within fixed, epoch-aligned windows. The
// count resets whenever the window id (floor of now over the window
// size) changes.
//
// A burst at the very end of one window followed by a burst at the start
// of the next can admit up to twice the per-window maximum within a
// short real-time span. This is inherent to fixed windows; use the
// sliding window limiter when that matters.
type Limiter interface {
	// Allow reports whether one request may proceed now. It does not block.
	Allow() bool

	// TryRequest attempts one admission and returns the full decision,
	// including a retry-after hint on denial. It does not block.
	TryRequest() Decision

	// SetMaxRequests changes the per-window maximum. The current window
	// count is preserved.
	SetMaxRequests(maxRequests int)

	// MaxRequests returns the per-window maximum.
	MaxRequests() int

	// WindowSize returns the window duration.
	WindowSize() time.Duration

	// Remaining returns the number of admissions left in the current
	// window without consuming one.
	Remaining() int
}

// DefaultWindow is the window size used when a Config leaves it zero.
const DefaultWindow = time.Second

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// MaxRequests is the maximum number of admissions per window.
	MaxRequests int

	// WindowSize is the window duration. If zero, DefaultWindow is used.
	WindowSize time.Duration

	// Clock provides the current time. If nil, the system clock is used.
	Clock tokenbucket.Clock
}

// fixedWindow implements the Limiter interface.
type fixedWindow struct {
	mu          sync.Mutex
	maxRequests int
	windowSize  time.Duration
	windowID    int64
	count       int
	clock       tokenbucket.Clock
}

// New creates a fixed window limiter.
func New(maxRequests int, windowSize time.Duration) (Limiter, error) {
	return NewWithConfig(Config{
		MaxRequests: maxRequests,
		WindowSize:  windowSize,
	})
}

// NewWithConfig creates a fixed window limiter from config. Construction
// fails immediately on a non-positive maximum or window size.
func NewWithConfig(config Config) (Limiter, error) {
	if config.WindowSize == 0 {
		config.WindowSize = DefaultWindow
	}
	if err := validation.ValidatePositive("fixedwindow", "maxRequests", config.MaxRequests); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("fixedwindow", "windowSize", config.WindowSize); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	fw := &fixedWindow{
		maxRequests: config.MaxRequests,
		windowSize:  config.WindowSize,
		clock:       config.Clock,
	}
	fw.windowID = fw.windowIDAt(config.Clock.Now())
	return fw, nil
}
