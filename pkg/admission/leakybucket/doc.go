/*
Package leakybucket provides a leaky bucket admission limiter with a
bounded FIFO request queue drained at a constant rate.

Each offered request either joins the queue or is rejected when the queue
is full. Draining happens two ways, which always agree on the arithmetic:

  - lazily, as a leak step at the start of every call, removing one
    whole-interval quantum of requests per elapsed leak interval;
  - in the background, as a repeating scheduled task that exists exactly
    while the queue is non-empty and cancels itself once it drains dry.

The drain task is addressed by its own handle, never by the configured
leak interval, and starting it is idempotent.

	limiter, err := leakybucket.New(10, 2, time.Second) // 10 slots, 2 drains/sec
	if err != nil {
		return err
	}
	defer limiter.Close()

	res := limiter.Add()
	if !res.Accepted {
		// Queue full; res.EstimatedWait hints when space frees.
	}

The limiter is safe for concurrent use.
*/
package leakybucket
