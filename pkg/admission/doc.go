// Package admission wraps the five admission strategies behind a single
// configuration-driven facade.
//
// A Facade is built from a Config naming exactly one strategy: token
// bucket, leaky bucket, fixed window, sliding window, or concurrency.
// Every unit of work goes through Execute; admitted work runs and its
// error is passed through unchanged, denied work fails with a rejection
// error carrying a retry-after hint. Status returns a point-in-time
// utilization snapshot without consuming admission capacity.
//
//	config, err := admission.ParseConfig(data)
//	if err != nil {
//		return err
//	}
//	facade, err := admission.New(config)
//	if err != nil {
//		return err
//	}
//	defer facade.Close()
//
//	err = facade.Execute(ctx, func(ctx context.Context) error {
//		return handle(ctx, req)
//	})
//
// For multi-tenant use, Keyed maintains one independent facade per
// string key, constructed lazily from the same config.
//
// The individual strategies live in the subpackages tokenbucket,
// leakybucket, fixedwindow, slidingwindow, and concurrency and can be
// used directly when the uniform surface is not needed.
package admission
