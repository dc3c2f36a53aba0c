package concurrency_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/vnykmshr/goadmit/pkg/admission/concurrency"
)

// Example demonstrates bounding in-flight work with the concurrency limiter
func Example() {
	// At most 2 operations run at once; the rest wait their turn
	limiter, err := concurrency.New(2)
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Execute(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				completed++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	fmt.Printf("completed %d operations\n", completed)
	fmt.Printf("in flight after: %d\n", limiter.InFlight())

	// Output:
	// completed 5 operations
	// in flight after: 0
}
