package concurrency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gacontext "github.com/vnykmshr/goadmit/pkg/common/context"
	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
)

// Execute runs op once a concurrency slot is available.
func (cl *limiter) Execute(ctx context.Context, op Operation) error {
	return cl.ExecuteWithID(ctx, uuid.NewString(), op)
}

// ExecuteWithID runs op under the given operation id.
func (cl *limiter) ExecuteWithID(ctx context.Context, id string, op Operation) error {
	if err := cl.acquire(ctx, id); err != nil {
		return err
	}
	defer cl.release(id)

	return cl.run(ctx, op)
}

// TryExecute runs op only if a slot is free right now.
func (cl *limiter) TryExecute(ctx context.Context, op Operation) error {
	id := uuid.NewString()

	cl.mu.Lock()
	if len(cl.waiters) > 0 || cl.inFlight >= cl.maxConcurrent {
		cl.mu.Unlock()
		return gaerrors.NewRejectionError("concurrency", 0, 0)
	}
	cl.admitLocked(id)
	cl.mu.Unlock()

	defer cl.release(id)
	return cl.run(ctx, op)
}

// acquire claims a slot for id, queueing behind earlier waiters when
// none is free. On success the caller owns the slot and must release it.
func (cl *limiter) acquire(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cl.mu.Lock()
	// Joining the queue while waiters exist would overtake them, so a
	// free slot is only claimed directly when the queue is empty.
	if len(cl.waiters) == 0 && cl.inFlight < cl.maxConcurrent {
		cl.admitLocked(id)
		cl.mu.Unlock()
		return nil
	}

	w := &waiter{
		id:         id,
		enqueuedAt: cl.clock.Now(),
		ready:      make(chan struct{}),
	}
	cl.waiters = append(cl.waiters, w)
	cl.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		cl.mu.Lock()
		select {
		case <-w.ready:
			// A releasing goroutine granted the slot before we could
			// withdraw; the slot is ours, so proceed.
			cl.mu.Unlock()
			return nil
		default:
		}
		cl.removeWaiterLocked(w)
		waited := cl.clock.Now().Sub(w.enqueuedAt)
		cl.mu.Unlock()

		if gacontext.IsTimedOut(ctx) {
			return gaerrors.NewQueueTimeoutError("concurrency", waited)
		}
		return ctx.Err()
	}
}

// release returns id's slot and hands it to the queue head. Releasing an
// id that is not in flight is a no-op, so the accounting stays correct
// even if release is reached twice.
func (cl *limiter) release(id string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, ok := cl.active[id]; !ok {
		return
	}
	delete(cl.active, id)
	cl.inFlight--
	cl.wakeLocked()
}

// admitLocked marks id in flight. Callers must hold cl.mu.
func (cl *limiter) admitLocked(id string) {
	cl.inFlight++
	cl.active[id] = cl.clock.Now()
}

// wakeLocked grants freed slots to queued callers in FIFO order,
// stopping at the first waiter that cannot be admitted. Callers must
// hold cl.mu.
func (cl *limiter) wakeLocked() {
	for len(cl.waiters) > 0 && cl.inFlight < cl.maxConcurrent {
		w := cl.waiters[0]
		cl.waiters = cl.waiters[1:]
		cl.admitLocked(w.id)
		close(w.ready)
	}
}

// removeWaiterLocked withdraws w from the queue, leaving the positions
// of the remaining waiters untouched. Callers must hold cl.mu.
func (cl *limiter) removeWaiterLocked(w *waiter) {
	for i, queued := range cl.waiters {
		if queued == w {
			cl.waiters = append(cl.waiters[:i], cl.waiters[i+1:]...)
			return
		}
	}
}

// run invokes op, converting a panic into an operation error so the
// deferred release above always runs and the slot is never leaked.
func (cl *limiter) run(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gaerrors.NewOperationError("concurrency", "Execute", fmt.Errorf("operation panicked: %v", r))
		}
	}()

	return op(ctx)
}

// SetMaxConcurrent changes the slot count. Non-positive values are ignored.
func (cl *limiter) SetMaxConcurrent(maxConcurrent int) {
	if maxConcurrent <= 0 {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.maxConcurrent = maxConcurrent
	cl.wakeLocked()
}

// MaxConcurrent returns the slot count.
func (cl *limiter) MaxConcurrent() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.maxConcurrent
}

// InFlight returns the number of operations currently running.
func (cl *limiter) InFlight() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.inFlight
}

// Waiting returns the number of callers queued for a slot.
func (cl *limiter) Waiting() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.waiters)
}

// ActiveRequests returns a snapshot of in-flight operation ids and
// their start times.
func (cl *limiter) ActiveRequests() map[string]time.Time {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	snapshot := make(map[string]time.Time, len(cl.active))
	for id, startedAt := range cl.active {
		snapshot[id] = startedAt
	}
	return snapshot
}
