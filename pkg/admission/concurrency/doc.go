// Package concurrency provides an admission strategy that bounds the
// number of simultaneously in-flight operations.
//
// Callers submit work through Execute. When all slots are busy the
// caller blocks in a strict FIFO queue until a running operation
// completes or the caller's context expires. Slot accounting is
// panic-safe: a slot is released exactly once whether the operation
// returns, fails, or panics.
//
//	limiter, err := concurrency.New(2)
//	if err != nil {
//		return err
//	}
//
//	err = limiter.Execute(ctx, func(ctx context.Context) error {
//		return callBackend(ctx)
//	})
package concurrency
