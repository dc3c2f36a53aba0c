package testutil

import (
	"context"
	"sync"
	"time"
)

// MockClock implements the limiter Clock interface for testing with
// controllable time. This is used across multiple limiter tests to avoid
// actual time delays.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// MockOperation is a caller-supplied unit of work with configurable
// behavior: it can succeed, fail, block until released, or panic, and
// it counts how many times it ran.
type MockOperation struct {
	mu       sync.Mutex
	calls    int
	err      error
	delay    time.Duration
	panicMsg string
	blocking bool
	release  chan struct{}
}

// NewMockOperation creates a MockOperation that succeeds immediately.
func NewMockOperation() *MockOperation {
	return &MockOperation{release: make(chan struct{})}
}

// Run executes the operation. It is safe for concurrent use.
func (m *MockOperation) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	err := m.err
	delay := m.delay
	panicMsg := m.panicMsg
	blocking := m.blocking
	release := m.release
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if blocking {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

// Calls returns the number of times Run was invoked.
func (m *MockOperation) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SetError configures the operation to return err.
func (m *MockOperation) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay configures the operation to sleep before returning.
func (m *MockOperation) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetPanic configures the operation to panic with the given message.
func (m *MockOperation) SetPanic(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
}

// SetBlocking configures the operation to block until Release is called.
func (m *MockOperation) SetBlocking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking = true
}

// Release unblocks all current and future Run calls of a blocking operation.
func (m *MockOperation) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.release:
	default:
		close(m.release)
	}
}
