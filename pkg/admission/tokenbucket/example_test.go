package tokenbucket_test

import (
	"fmt"
	"time"

	"github.com/vnykmshr/goadmit/pkg/admission/tokenbucket"
)

// Example demonstrates basic usage of the token bucket limiter
func Example() {
	// 10-token bucket refilled with 2 tokens every second
	limiter, err := tokenbucket.New(10, 2, time.Second)
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	// Check if a request is allowed (non-blocking)
	if limiter.Allow() {
		fmt.Println("Request allowed")
	} else {
		fmt.Println("Request denied")
	}

	// Output: Request allowed
}

// Example_tryConsume demonstrates inspecting the full admission decision
func Example_tryConsume() {
	limiter, err := tokenbucket.New(3, 1, time.Second)
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	// Drain the bucket, then inspect a denial.
	d := limiter.TryConsume(3)
	fmt.Printf("allowed=%v remaining=%d\n", d.Allowed, d.Remaining)

	d = limiter.TryConsume(2)
	fmt.Printf("allowed=%v retry after %v\n", d.Allowed, d.RetryAfter)

	// Output:
	// allowed=true remaining=0
	// allowed=false retry after 2s
}

// Example_overCapacity demonstrates a permanently unsatisfiable request
func Example_overCapacity() {
	limiter, err := tokenbucket.New(5, 1, time.Second)
	if err != nil {
		panic(fmt.Sprintf("Failed to create limiter: %v", err))
	}

	d := limiter.TryConsume(6)
	fmt.Printf("allowed=%v permanent=%v\n", d.Allowed, d.RetryAfter == tokenbucket.RetryNever)

	// Output: allowed=false permanent=true
}
