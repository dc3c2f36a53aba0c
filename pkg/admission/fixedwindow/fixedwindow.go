package fixedwindow

import (
	"time"
)

// Allow reports whether one request may proceed now.
func (fw *fixedWindow) Allow() bool {
	return fw.TryRequest().Allowed
}

// TryRequest attempts one admission. The decision is always immediate.
func (fw *fixedWindow) TryRequest() Decision {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.clock.Now()
	fw.roll(now)

	resetAt := fw.resetAt()

	if fw.count < fw.maxRequests {
		fw.count++
		return Decision{
			Allowed:   true,
			Remaining: fw.maxRequests - fw.count,
			ResetAt:   resetAt,
		}
	}

	return Decision{
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}
}

// SetMaxRequests changes the per-window maximum. Non-positive values
// are ignored.
func (fw *fixedWindow) SetMaxRequests(maxRequests int) {
	if maxRequests <= 0 {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.maxRequests = maxRequests
}

// MaxRequests returns the per-window maximum.
func (fw *fixedWindow) MaxRequests() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.maxRequests
}

// WindowSize returns the window duration.
func (fw *fixedWindow) WindowSize() time.Duration {
	return fw.windowSize
}

// Remaining returns the number of admissions left in the current window.
func (fw *fixedWindow) Remaining() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.roll(fw.clock.Now())
	if remaining := fw.maxRequests - fw.count; remaining > 0 {
		return remaining
	}
	return 0
}

// roll resets the count when now falls in a different window. Window ids
// are epoch aligned, so every limiter with the same window size agrees
// on the boundaries.
func (fw *fixedWindow) roll(now time.Time) {
	if id := fw.windowIDAt(now); id != fw.windowID {
		fw.windowID = id
		fw.count = 0
	}
}

func (fw *fixedWindow) windowIDAt(now time.Time) int64 {
	return now.UnixNano() / int64(fw.windowSize)
}

func (fw *fixedWindow) resetAt() time.Time {
	return time.Unix(0, (fw.windowID+1)*int64(fw.windowSize))
}
