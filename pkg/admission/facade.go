package admission

import (
	"context"

	"github.com/vnykmshr/goadmit/pkg/admission/concurrency"
	"github.com/vnykmshr/goadmit/pkg/admission/fixedwindow"
	"github.com/vnykmshr/goadmit/pkg/admission/leakybucket"
	"github.com/vnykmshr/goadmit/pkg/admission/slidingwindow"
	"github.com/vnykmshr/goadmit/pkg/admission/tokenbucket"
	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
)

// Operation is a unit of work submitted through a Facade.
type Operation = concurrency.Operation

// Facade wraps a single admission strategy behind a uniform Execute and
// Status surface. It owns the underlying limiter; no two facades share
// state.
type Facade struct {
	strategy Strategy

	tokens     tokenbucket.Limiter
	leaky      leakybucket.Limiter
	fixed      fixedwindow.Limiter
	sliding    slidingwindow.Limiter
	concurrent concurrency.Limiter
}

// New constructs a facade around the strategy named by config.
func New(config Config) (*Facade, error) {
	config = config.withDefaults()

	f := &Facade{strategy: config.Strategy}
	var err error

	switch config.Strategy {
	case StrategyTokenBucket:
		f.tokens, err = tokenbucket.NewWithConfigAndMetrics(tokenbucket.Config{
			Capacity:       config.Capacity,
			RefillRate:     config.Rate,
			RefillInterval: config.Interval,
			InitialTokens:  -1,
		}, config.Name, config.Metrics)
	case StrategyLeakyBucket:
		f.leaky, err = leakybucket.NewWithConfig(leakybucket.Config{
			Capacity:     config.Capacity,
			LeakRate:     config.Rate,
			LeakInterval: config.Interval,
			Name:         config.Name,
			Metrics:      config.Metrics,
		})
	case StrategyFixedWindow:
		f.fixed, err = fixedwindow.NewWithConfigAndMetrics(fixedwindow.Config{
			MaxRequests: config.Capacity,
			WindowSize:  config.Interval,
		}, config.Name, config.Metrics)
	case StrategySlidingWindow:
		f.sliding, err = slidingwindow.NewWithConfigAndMetrics(slidingwindow.Config{
			MaxRequests: config.Capacity,
			WindowSize:  config.Interval,
		}, config.Name, config.Metrics)
	case StrategyConcurrency:
		f.concurrent, err = concurrency.NewWithConfigAndMetrics(concurrency.Config{
			MaxConcurrent: config.MaxConcurrent,
		}, config.Name, config.Metrics)
	default:
		return nil, gaerrors.NewValidationError("admission", "strategy", config.Strategy.String(), "must name a known strategy").
			WithHint("one of token-bucket, leaky-bucket, fixed-window, sliding-window, concurrency")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Strategy returns the strategy the facade was built around.
func (f *Facade) Strategy() Strategy {
	return f.strategy
}

// Execute submits one unit of work. For the counting strategies the
// decision is immediate: on admission op runs synchronously and its
// error is returned unchanged; on denial a rejection error carrying a
// retry-after hint is returned and op never runs. For the concurrency
// strategy the call delegates to the concurrency limiter and may block
// until a slot frees or ctx expires.
func (f *Facade) Execute(ctx context.Context, op Operation) error {
	switch f.strategy {
	case StrategyTokenBucket:
		d := f.tokens.TryConsume(1)
		if !d.Allowed {
			return gaerrors.NewRejectionError(f.strategy.String(), d.RetryAfter, d.Remaining)
		}
		return op(ctx)

	case StrategyLeakyBucket:
		res := f.leaky.Add()
		if !res.Accepted {
			return gaerrors.NewQueueFullError(f.strategy.String(), res.EstimatedWait)
		}
		return op(ctx)

	case StrategyFixedWindow:
		d := f.fixed.TryRequest()
		if !d.Allowed {
			return gaerrors.NewRejectionError(f.strategy.String(), d.RetryAfter, d.Remaining)
		}
		return op(ctx)

	case StrategySlidingWindow:
		d := f.sliding.TryRequest()
		if !d.Allowed {
			return gaerrors.NewRejectionError(f.strategy.String(), d.RetryAfter, d.Remaining)
		}
		return op(ctx)

	default:
		return f.concurrent.Execute(ctx, op)
	}
}

// Allow reports whether one unit of work would be admitted right now,
// consuming admission capacity on the counting strategies. For the
// concurrency strategy it reports whether a slot is currently free.
func (f *Facade) Allow() bool {
	switch f.strategy {
	case StrategyTokenBucket:
		return f.tokens.Allow()
	case StrategyLeakyBucket:
		return f.leaky.Allow()
	case StrategyFixedWindow:
		return f.fixed.Allow()
	case StrategySlidingWindow:
		return f.sliding.Allow()
	default:
		return f.concurrent.InFlight() < f.concurrent.MaxConcurrent()
	}
}

// Close releases background resources held by the underlying strategy.
// Only the leaky bucket owns any; for every other strategy Close is a
// no-op.
func (f *Facade) Close() error {
	if f.strategy == StrategyLeakyBucket {
		return f.leaky.Close()
	}
	return nil
}

// Status is a point-in-time snapshot of the underlying limiter. Only
// the fields relevant to the facade's strategy are populated; the rest
// stay zero.
type Status struct {
	// Strategy is the configuration name of the strategy.
	Strategy string

	// UtilizationPercent is how much of the strategy's capacity is in
	// use, from 0 to 100.
	UtilizationPercent float64

	// Capacity and Available describe the bucket strategies: token or
	// queue capacity and how much of it is free.
	Capacity  int
	Available int

	// QueueSize is the leaky bucket's current queue length.
	QueueSize int

	// MaxRequests is the window strategies' per-window maximum.
	MaxRequests int

	// MaxConcurrent, InFlight, and Waiting describe the concurrency
	// strategy.
	MaxConcurrent int
	InFlight      int
	Waiting       int
}

// Status returns a snapshot for observability. It never consumes
// admission capacity: two calls with no intervening admission return
// identical values apart from time-derived fields.
func (f *Facade) Status() Status {
	s := Status{Strategy: f.strategy.String()}

	switch f.strategy {
	case StrategyTokenBucket:
		s.Capacity = f.tokens.Capacity()
		s.Available = f.tokens.Tokens()
		s.UtilizationPercent = utilization(s.Capacity-s.Available, s.Capacity)

	case StrategyLeakyBucket:
		s.Capacity = f.leaky.Capacity()
		s.QueueSize = f.leaky.QueueLen()
		s.Available = s.Capacity - s.QueueSize
		s.UtilizationPercent = utilization(s.QueueSize, s.Capacity)

	case StrategyFixedWindow:
		s.MaxRequests = f.fixed.MaxRequests()
		s.Available = f.fixed.Remaining()
		s.UtilizationPercent = utilization(s.MaxRequests-s.Available, s.MaxRequests)

	case StrategySlidingWindow:
		s.MaxRequests = f.sliding.MaxRequests()
		used := f.sliding.Len()
		s.Available = s.MaxRequests - used
		if s.Available < 0 {
			s.Available = 0
		}
		s.UtilizationPercent = utilization(used, s.MaxRequests)

	default:
		s.MaxConcurrent = f.concurrent.MaxConcurrent()
		s.InFlight = f.concurrent.InFlight()
		s.Waiting = f.concurrent.Waiting()
		s.Available = s.MaxConcurrent - s.InFlight
		s.UtilizationPercent = utilization(s.InFlight, s.MaxConcurrent)
	}

	return s
}

func utilization(used, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(used) / float64(capacity) * 100
}
