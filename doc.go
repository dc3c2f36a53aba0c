/*
Package goadmit provides single-process, in-memory admission control for
embedding inside a service.

Five interchangeable strategies (pkg/admission):
  - tokenbucket: quantized token refill with burst capacity
  - leakybucket: bounded FIFO queue drained at a constant rate
  - fixedwindow: request counting per epoch-aligned window
  - slidingwindow: per-request timestamp log over a rolling window
  - concurrency: bound on simultaneously in-flight operations

The pkg/admission facade selects one strategy from configuration and
exposes a uniform Execute and Status surface; Keyed multiplexes
independent facades per tenant or route key.

Supporting packages:
  - pkg/metrics: Prometheus instrumentation for all strategies
  - pkg/scheduling/scheduler: interval and cron scheduling, used for
    background queue draining

Example usage:

	import "github.com/vnykmshr/goadmit/pkg/admission"

	facade, _ := admission.New(admission.Config{
		Strategy: admission.StrategyTokenBucket,
		Capacity: 100,
		Rate:     10,
	})
	defer facade.Close()

	err := facade.Execute(ctx, func(ctx context.Context) error {
		return handle(ctx, req)
	})
*/
package goadmit
