package slidingwindow

import (
	"testing"
	"time"

	"github.com/vnykmshr/goadmit/internal/testutil"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		maxRequests int
		windowSize  time.Duration
		wantErr     bool
	}{
		{"valid parameters", 3, time.Second, false},
		{"single request window", 1, time.Millisecond, false},
		{"zero max requests", 0, time.Second, true},
		{"negative max requests", -1, time.Second, true},
		{"negative window", 3, -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := New(tt.maxRequests, tt.windowSize)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for invalid parameters")
				}
				if limiter != nil {
					t.Error("expected nil limiter on error")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, limiter.MaxRequests(), tt.maxRequests)
				testutil.AssertEqual(t, limiter.WindowSize(), tt.windowSize)
				testutil.AssertEqual(t, limiter.Len(), 0)
			}
		})
	}
}

func TestNew_DefaultWindow(t *testing.T) {
	limiter, err := NewWithConfig(Config{MaxRequests: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, limiter.WindowSize(), DefaultWindow)
}

func newWithClock(t *testing.T, maxRequests int, windowSize time.Duration) (Limiter, *testutil.MockClock) {
	t.Helper()
	clock := testutil.NewMockClock(time.Unix(100, 0))
	limiter, err := NewWithConfig(Config{
		MaxRequests: maxRequests,
		WindowSize:  windowSize,
		Clock:       clock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return limiter, clock
}

func TestTryRequest_RollingWindow(t *testing.T) {
	limiter, clock := newWithClock(t, 3, time.Second)
	start := clock.Now()

	// Three admissions at t=0 fill the window.
	for i := 0; i < 3; i++ {
		d := limiter.TryRequest()
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		testutil.AssertEqual(t, d.Remaining, 2-i)
	}

	// A fourth at t=500 is still inside the window of all three.
	clock.Advance(500 * time.Millisecond)
	d := limiter.TryRequest()
	if d.Allowed {
		t.Error("request at t=500ms should be denied")
	}
	testutil.AssertEqual(t, d.OldestRequest, start)
	testutil.AssertEqual(t, d.RetryAfter, 500*time.Millisecond)

	// Once the oldest entry ages past t=1000, one slot frees.
	clock.Advance(500 * time.Millisecond)
	d = limiter.TryRequest()
	if !d.Allowed {
		t.Error("request at t=1s should be allowed")
	}
	testutil.AssertEqual(t, limiter.Len(), 3)
}

func TestTryRequest_NoBoundaryDoubling(t *testing.T) {
	// Unlike a fixed window, at most maxRequests can ever be admitted
	// within any rolling windowSize span.
	limiter, clock := newWithClock(t, 5, time.Second)

	clock.Advance(990 * time.Millisecond)
	allowed := 0
	for i := 0; i < 5; i++ {
		if limiter.Allow() {
			allowed++
		}
	}

	clock.Advance(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if limiter.Allow() {
			allowed++
		}
	}

	testutil.AssertEqual(t, allowed, 5)
}

func TestPrune(t *testing.T) {
	limiter, clock := newWithClock(t, 5, time.Second)

	limiter.Allow()
	clock.Advance(400 * time.Millisecond)
	limiter.Allow()
	clock.Advance(400 * time.Millisecond)
	limiter.Allow()
	testutil.AssertEqual(t, limiter.Len(), 3)

	// t=1000: the t=0 entry ages out, the rest stay.
	clock.Advance(200 * time.Millisecond)
	testutil.AssertEqual(t, limiter.Len(), 2)

	// Far future: everything ages out.
	clock.Advance(time.Minute)
	testutil.AssertEqual(t, limiter.Len(), 0)
}

func TestLen_DoesNotConsume(t *testing.T) {
	limiter, _ := newWithClock(t, 3, time.Second)

	limiter.Allow()
	testutil.AssertEqual(t, limiter.Len(), 1)
	testutil.AssertEqual(t, limiter.Len(), 1)
}

func TestSetMaxRequests(t *testing.T) {
	limiter, _ := newWithClock(t, 1, time.Second)

	limiter.Allow()
	if limiter.Allow() {
		t.Error("window should be full")
	}

	limiter.SetMaxRequests(3)
	if !limiter.Allow() {
		t.Error("request should be allowed after raising the maximum")
	}

	limiter.SetMaxRequests(-1)
	testutil.AssertEqual(t, limiter.MaxRequests(), 3)

	// Lowering keeps existing entries; new admissions wait for pruning.
	limiter.SetMaxRequests(1)
	testutil.AssertEqual(t, limiter.Len(), 2)
	if limiter.Allow() {
		t.Error("request should be denied after lowering the maximum")
	}
}

func TestMetricsLimiter(t *testing.T) {
	limiter, err := NewWithMetrics(2, time.Second, "test-window")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ml, ok := limiter.(*MetricsLimiter)
	if !ok {
		t.Fatal("expected a MetricsLimiter")
	}
	if !ml.MetricsEnabled() {
		t.Error("metrics should be enabled")
	}

	if !limiter.Allow() {
		t.Error("first request should be allowed")
	}
	testutil.AssertEqual(t, limiter.Len(), 1)

	ml.DisableMetrics()
	if ml.MetricsEnabled() {
		t.Error("metrics should be disabled")
	}
}
