package slidingwindow

import (
	"time"
)

// Allow reports whether one request may proceed now.
func (sw *slidingWindow) Allow() bool {
	return sw.TryRequest().Allowed
}

// TryRequest attempts one admission. The decision is always immediate.
func (sw *slidingWindow) TryRequest() Decision {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.clock.Now()
	sw.prune(now)

	if len(sw.log) < sw.maxRequests {
		sw.log = append(sw.log, now)
		return Decision{
			Allowed:       true,
			Remaining:     sw.maxRequests - len(sw.log),
			OldestRequest: sw.log[0],
		}
	}

	oldest := sw.log[0]
	return Decision{
		OldestRequest: oldest,
		RetryAfter:    oldest.Add(sw.windowSize).Sub(now),
	}
}

// SetMaxRequests changes the rolling-window maximum. Non-positive values
// are ignored.
func (sw *slidingWindow) SetMaxRequests(maxRequests int) {
	if maxRequests <= 0 {
		return
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.maxRequests = maxRequests
}

// MaxRequests returns the rolling-window maximum.
func (sw *slidingWindow) MaxRequests() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.maxRequests
}

// WindowSize returns the window duration.
func (sw *slidingWindow) WindowSize() time.Duration {
	return sw.windowSize
}

// Len returns the number of admissions currently in the window.
func (sw *slidingWindow) Len() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.prune(sw.clock.Now())
	return len(sw.log)
}

// prune drops every log entry that has aged out of the rolling window.
// Entries are appended in admission order, so the log stays sorted and a
// single scan from the head suffices.
func (sw *slidingWindow) prune(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.log) && !sw.log[i].After(cutoff) {
		i++
	}
	if i > 0 {
		sw.log = append(sw.log[:0], sw.log[i:]...)
	}
}
