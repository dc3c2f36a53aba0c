package leakybucket

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vnykmshr/goadmit/pkg/scheduling/scheduler"
)

// Allow reports whether a request fits in the queue now.
func (lb *leakyBucket) Allow() bool {
	return lb.Add().Accepted
}

// Add offers one request to the queue. The decision is always immediate:
// a leak step runs first, then the request is enqueued if the queue has
// room, otherwise rejected.
func (lb *leakyBucket) Add() Result {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := lb.clock.Now()
	lb.leak(now)

	if lb.registry != nil {
		lb.registry.AdmissionRequests.WithLabelValues("leaky_bucket", lb.name).Inc()
	}

	if len(lb.queue) >= lb.capacity {
		if lb.registry != nil {
			lb.registry.AdmissionDenied.WithLabelValues("leaky_bucket", lb.name).Inc()
		}
		return Result{
			QueueSize:     len(lb.queue),
			EstimatedWait: lb.drainTime(len(lb.queue)),
		}
	}

	req := queuedRequest{id: uuid.NewString(), enqueuedAt: now}
	lb.queue = append(lb.queue, req)
	lb.startDraining()

	if lb.registry != nil {
		lb.registry.AdmissionAllowed.WithLabelValues("leaky_bucket", lb.name).Inc()
		lb.registry.QueueDepth.WithLabelValues("leaky_bucket", lb.name).Set(float64(len(lb.queue)))
	}

	return Result{
		Accepted:      true,
		ID:            req.id,
		QueueSize:     len(lb.queue),
		EstimatedWait: lb.drainTime(len(lb.queue)),
	}
}

// QueueLen returns the current queue length.
func (lb *leakyBucket) QueueLen() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.leak(lb.clock.Now())
	return len(lb.queue)
}

// Capacity returns the maximum queue length.
func (lb *leakyBucket) Capacity() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.capacity
}

// LeakRate returns the number of requests drained per interval.
func (lb *leakyBucket) LeakRate() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.leakRate
}

// LeakInterval returns the drain interval.
func (lb *leakyBucket) LeakInterval() time.Duration {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.leakInterval
}

// Draining reports whether the background drain task is scheduled.
func (lb *leakyBucket) Draining() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.draining
}

// Close cancels the drain task and stops the owned scheduler. Admission
// keeps working afterwards; only the background draining stops.
func (lb *leakyBucket) Close() error {
	lb.mu.Lock()
	if lb.closed {
		lb.mu.Unlock()
		return nil
	}
	lb.closed = true
	lb.stopDraining()
	ownSched := lb.ownSched && lb.schedStarted
	sched := lb.sched
	lb.mu.Unlock()

	if ownSched {
		<-sched.Stop()
	}
	return nil
}

// leak removes up to intervalsElapsed*leakRate requests from the queue
// head. lastLeak advances by whole intervals only, keeping the drain
// phase aligned. Must be called with lb.mu held.
func (lb *leakyBucket) leak(now time.Time) {
	elapsed := now.Sub(lb.lastLeak)
	if elapsed < lb.leakInterval {
		return
	}

	intervals := int64(elapsed / lb.leakInterval)
	drained := int(intervals) * lb.leakRate
	if drained > len(lb.queue) {
		drained = len(lb.queue)
	}
	if drained > 0 {
		lb.queue = lb.queue[drained:]
	}
	lb.lastLeak = lb.lastLeak.Add(time.Duration(intervals) * lb.leakInterval)

	if lb.registry != nil {
		lb.registry.DrainedRequests.WithLabelValues(lb.name).Add(float64(drained))
		lb.registry.QueueDepth.WithLabelValues("leaky_bucket", lb.name).Set(float64(len(lb.queue)))
	}
}

// drainTime estimates how long n queued requests take to drain.
// Must be called with lb.mu held.
func (lb *leakyBucket) drainTime(n int) time.Duration {
	return time.Duration(n) * lb.leakInterval / time.Duration(lb.leakRate)
}

// startDraining schedules the background drain task. Starting is
// idempotent: a second call while the task exists is a no-op. Must be
// called with lb.mu held.
func (lb *leakyBucket) startDraining() {
	if lb.draining || lb.closed {
		return
	}

	if lb.ownSched && !lb.schedStarted {
		if err := lb.sched.Start(); err != nil {
			return
		}
		lb.schedStarted = true
	}

	task := scheduler.TaskFunc(func(_ context.Context) error {
		lb.drainStep()
		return nil
	})
	if err := lb.sched.ScheduleRepeating(lb.drainID, task, lb.leakInterval); err != nil {
		return
	}
	lb.draining = true
}

// stopDraining cancels the background drain task. Stopping is idempotent.
// Must be called with lb.mu held.
func (lb *leakyBucket) stopDraining() {
	if !lb.draining {
		return
	}
	lb.sched.Cancel(lb.drainID)
	lb.draining = false
}

// drainStep is the body of the background drain task. It runs a leak
// step and cancels the task once the queue is empty.
func (lb *leakyBucket) drainStep() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.leak(lb.clock.Now())

	if lb.registry != nil {
		lb.registry.DrainTicks.WithLabelValues(lb.name).Inc()
	}

	if len(lb.queue) == 0 {
		lb.stopDraining()
	}
}
