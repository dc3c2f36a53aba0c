package concurrency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
	"github.com/vnykmshr/goadmit/pkg/metrics"
)

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a concurrency limiter with metrics enabled.
func NewWithMetrics(maxConcurrent int, name string) (Limiter, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{MaxConcurrent: maxConcurrent}, name, config)
}

// NewWithConfigAndMetrics creates a concurrency limiter with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Limiter, error) {
	baseLimiter, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return baseLimiter, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsLimiter{
		limiter:  baseLimiter,
		name:     name,
		registry: registry,
		enabled:  true,
	}, nil
}

// Execute runs op once a concurrency slot is available, recording the
// admission outcome and time spent waiting for a slot.
func (ml *MetricsLimiter) Execute(ctx context.Context, op Operation) error {
	return ml.instrument(ctx, func(ctx context.Context) error {
		return ml.limiter.Execute(ctx, op)
	})
}

// ExecuteWithID is Execute with a caller-chosen operation id.
func (ml *MetricsLimiter) ExecuteWithID(ctx context.Context, id string, op Operation) error {
	return ml.instrument(ctx, func(ctx context.Context) error {
		return ml.limiter.ExecuteWithID(ctx, id, op)
	})
}

// TryExecute runs op only if a slot is free right now.
func (ml *MetricsLimiter) TryExecute(ctx context.Context, op Operation) error {
	return ml.instrument(ctx, func(ctx context.Context) error {
		return ml.limiter.TryExecute(ctx, op)
	})
}

func (ml *MetricsLimiter) instrument(ctx context.Context, submit func(ctx context.Context) error) error {
	if !ml.enabled {
		return submit(ctx)
	}

	ml.registry.AdmissionRequests.WithLabelValues("concurrency", ml.name).Inc()
	start := time.Now()

	err := submit(ctx)

	ml.registry.AdmissionWaitTime.WithLabelValues("concurrency", ml.name).Observe(time.Since(start).Seconds())

	// Operation failures still count as admitted; only the limiter's
	// own rejections and queue timeouts count as denied.
	if errors.Is(err, gaerrors.ErrRateLimited) || errors.Is(err, gaerrors.ErrTimeout) {
		ml.registry.AdmissionDenied.WithLabelValues("concurrency", ml.name).Inc()
	} else {
		ml.registry.AdmissionAllowed.WithLabelValues("concurrency", ml.name).Inc()
	}

	ml.registry.ConcurrencyActive.WithLabelValues(ml.name).Set(float64(ml.limiter.InFlight()))
	ml.registry.ConcurrencyWaiting.WithLabelValues(ml.name).Set(float64(ml.limiter.Waiting()))

	return err
}

// SetMaxConcurrent changes the slot count.
func (ml *MetricsLimiter) SetMaxConcurrent(maxConcurrent int) {
	ml.limiter.SetMaxConcurrent(maxConcurrent)
}

// MaxConcurrent returns the slot count.
func (ml *MetricsLimiter) MaxConcurrent() int {
	return ml.limiter.MaxConcurrent()
}

// InFlight returns the number of operations currently running.
func (ml *MetricsLimiter) InFlight() int {
	inFlight := ml.limiter.InFlight()

	if ml.enabled {
		ml.registry.ConcurrencyActive.WithLabelValues(ml.name).Set(float64(inFlight))
	}

	return inFlight
}

// Waiting returns the number of callers queued for a slot.
func (ml *MetricsLimiter) Waiting() int {
	waiting := ml.limiter.Waiting()

	if ml.enabled {
		ml.registry.ConcurrencyWaiting.WithLabelValues(ml.name).Set(float64(waiting))
	}

	return waiting
}

// ActiveRequests returns a snapshot of in-flight operation ids and
// their start times.
func (ml *MetricsLimiter) ActiveRequests() map[string]time.Time {
	return ml.limiter.ActiveRequests()
}

// EnableMetrics enables metrics collection.
func (ml *MetricsLimiter) EnableMetrics(config metrics.Config) error {
	ml.enabled = config.Enabled

	if config.Registry != nil {
		ml.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (ml *MetricsLimiter) DisableMetrics() {
	ml.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ml *MetricsLimiter) MetricsEnabled() bool {
	return ml.enabled
}
