package slidingwindow

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

	// Remaining is the number of admissions left in the rolling window.
	Remaining int

	// OldestRequest is the timestamp of the oldest admission still in
	// the window. It is zero when the window is empty.
	OldestRequest time.Time

	// RetryAfter is a backoff hint when the request was denied: the time
	// until the oldest admission ages out of the window. It is zero for
	// allowed requests.
	RetryAfter time.Duration
}

// Limiter tracks individual admission timestamps within a rolling
// window. Unlike the fixed window limiter it has no boundary-doubling
// artifact, at the cost of O(maxRequests) memory per limiter and O(n)
// pruning per call.
type Limiter interface {
	// Allow reports whether one request may proceed now. It does not block.
	Allow() bool

	// TryRequest attempts one admission and returns the full decision,
	// including a retry-after hint on denial. It does not block.
	TryRequest() Decision

	// SetMaxRequests changes the rolling-window maximum. Admissions
	// already in the log are kept, even beyond a lowered maximum.
	SetMaxRequests(maxRequests int)

	// MaxRequests returns the rolling-window maximum.
	MaxRequests() int

	// WindowSize returns the window duration.
	WindowSize() time.Duration

	// Len returns the number of admissions currently in the window
	// without consuming one.
	Len() int
}

// DefaultWindow is the window size used when a Config leaves it zero.
const DefaultWindow = time.Second

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// MaxRequests is the maximum number of admissions in any rolling window.
	MaxRequests int

	// WindowSize is the window duration. If zero, DefaultWindow is used.
	WindowSize time.Duration

	// Clock provides the current time. If nil, the system clock is used.
	Clock tokenbucket.Clock
}

// slidingWindow implements the Limiter interface.
type slidingWindow struct {
	mu          sync.Mutex
	maxRequests int
	windowSize  time.Duration
	log         []time.Time
	clock       tokenbucket.Clock
}

// New creates a sliding window log limiter.
func New(maxRequests int, windowSize time.Duration) (Limiter, error) {
	return NewWithConfig(Config{
		MaxRequests: maxRequests,
		WindowSize:  windowSize,
	})
}

// NewWithConfig creates a sliding window log limiter from config.
// Construction fails immediately on a non-positive maximum or window size.
func NewWithConfig(config Config) (Limiter, error) {
	if config.WindowSize == 0 {
		config.WindowSize = DefaultWindow
	}
	if err := validation.ValidatePositive("slidingwindow", "maxRequests", config.MaxRequests); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("slidingwindow", "windowSize", config.WindowSize); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	return &slidingWindow{
		maxRequests: config.MaxRequests,
		windowSize:  config.WindowSize,
		log:         make([]time.Time, 0, config.MaxRequests),
		clock:       config.Clock,
	}, nil
}
