package tokenbucket

import (
	"time"
)

// Allow reports whether one event may happen now.
func (tb *tokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN reports whether n events may happen now.
func (tb *tokenBucket) AllowN(n int) bool {
	return tb.TryConsume(n).Allowed
}

// TryConsume attempts to take n tokens. The decision is always immediate.
func (tb *tokenBucket) TryConsume(n int) Decision {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())

	if n <= 0 {
		return Decision{Allowed: true, Remaining: tb.tokens}
	}

	// A request larger than the capacity can never be satisfied no
	// matter how long the caller waits.
	if n > tb.capacity {
		return Decision{Remaining: tb.tokens, RetryAfter: RetryNever}
	}

	if tb.tokens >= n {
		tb.tokens -= n
		return Decision{Allowed: true, Remaining: tb.tokens}
	}

	deficit := n - tb.tokens
	intervals := (deficit + tb.refillRate - 1) / tb.refillRate
	return Decision{
		Remaining:  tb.tokens,
		RetryAfter: time.Duration(intervals) * tb.refillInterval,
	}
}

// SetRefillRate changes the refill rate. Non-positive rates are ignored.
func (tb *tokenBucket) SetRefillRate(rate int) {
	if rate <= 0 {
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	tb.refillRate = rate
}

// SetCapacity changes the bucket capacity. Non-positive capacities are ignored.
func (tb *tokenBucket) SetCapacity(capacity int) {
	if capacity <= 0 {
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	tb.capacity = capacity
	if tb.tokens > capacity {
		tb.tokens = capacity
	}
}

// Capacity returns the maximum number of tokens the bucket holds.
func (tb *tokenBucket) Capacity() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.capacity
}

// RefillRate returns the number of tokens added per interval.
func (tb *tokenBucket) RefillRate() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.refillRate
}

// RefillInterval returns the refill interval.
func (tb *tokenBucket) RefillInterval() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.refillInterval
}

// Tokens returns the number of tokens currently available.
func (tb *tokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	return tb.tokens
}

// refill adds whole-interval token quanta elapsed since the last refill.
// lastRefill advances by complete intervals only, so the refill phase
// stays aligned; partial intervals never produce partial tokens.
func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed < tb.refillInterval {
		return
	}

	intervals := int64(elapsed / tb.refillInterval)
	added := intervals * int64(tb.refillRate)
	if total := int64(tb.tokens) + added; total > int64(tb.capacity) {
		tb.tokens = tb.capacity
	} else {
		tb.tokens = int(total)
	}
	tb.lastRefill = tb.lastRefill.Add(time.Duration(intervals) * tb.refillInterval)
}
