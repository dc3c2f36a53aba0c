package admission_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vnykmshr/goadmit/pkg/admission"
	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
)

// Example demonstrates the configuration-driven facade
func Example() {
	facade, err := admission.New(admission.Config{
		Strategy: admission.StrategyTokenBucket,
		Capacity: 2,
		Rate:     1,
		Interval: time.Minute,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create facade: %v", err))
	}
	defer facade.Close()

	work := func(ctx context.Context) error {
		fmt.Println("handled")
		return nil
	}

	for i := 0; i < 3; i++ {
		err := facade.Execute(context.Background(), work)
		if errors.Is(err, gaerrors.ErrRateLimited) {
			retryAfter, _ := gaerrors.RetryAfter(err)
			fmt.Printf("rejected, retry after %v\n", retryAfter)
		}
	}

	// Output:
	// handled
	// handled
	// rejected, retry after 1m0s
}

// Example_parseConfig demonstrates building a facade from YAML
func Example_parseConfig() {
	config, err := admission.ParseConfig([]byte(`
strategy: fixed-window
capacity: 100
interval: 1s
name: search-api
`))
	if err != nil {
		panic(fmt.Sprintf("Failed to parse config: %v", err))
	}

	facade, err := admission.New(config)
	if err != nil {
		panic(fmt.Sprintf("Failed to create facade: %v", err))
	}
	defer facade.Close()

	status := facade.Status()
	fmt.Printf("%s: %d of %d used\n", status.Strategy, status.MaxRequests-status.Available, status.MaxRequests)

	// Output: fixed-window: 0 of 100 used
}

// Example_keyed demonstrates per-tenant limiting
func Example_keyed() {
	keyed, err := admission.NewKeyed(admission.Config{
		Strategy: admission.StrategySlidingWindow,
		Capacity: 1,
		Interval: time.Minute,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create keyed facade: %v", err))
	}
	defer keyed.Close()

	noop := func(ctx context.Context) error { return nil }

	fmt.Println("tenant-a:", keyed.Execute(context.Background(), "tenant-a", noop) == nil)
	fmt.Println("tenant-b:", keyed.Execute(context.Background(), "tenant-b", noop) == nil)
	fmt.Println("tenant-a again:", keyed.Execute(context.Background(), "tenant-a", noop) == nil)

	// Output:
	// tenant-a: true
	// tenant-b: true
	// tenant-a again: false
}
