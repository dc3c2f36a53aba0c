package fixedwindow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/goadmit/pkg/metrics"
)

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a fixed window limiter with metrics enabled.
func NewWithMetrics(maxRequests int, windowSize time.Duration, name string) (Limiter, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		MaxRequests: maxRequests,
		WindowSize:  windowSize,
	}, name, config)
}

// NewWithConfigAndMetrics creates a fixed window limiter with custom config and metrics.
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

// Allow reports whether one request may proceed now.
func (ml *MetricsLimiter) Allow() bool {
	return ml.TryRequest().Allowed
}

// TryRequest attempts one admission and records the decision.
func (ml *MetricsLimiter) TryRequest() Decision {
	if ml.enabled {
		ml.registry.AdmissionRequests.WithLabelValues("fixed_window", ml.name).Inc()
	}

	decision := ml.limiter.TryRequest()

	if ml.enabled {
		if decision.Allowed {
			ml.registry.AdmissionAllowed.WithLabelValues("fixed_window", ml.name).Inc()
		} else {
			ml.registry.AdmissionDenied.WithLabelValues("fixed_window", ml.name).Inc()
		}

		ml.registry.TokensAvailable.WithLabelValues("fixed_window", ml.name).Set(float64(decision.Remaining))
	}

	return decision
}

// SetMaxRequests changes the per-window maximum.
func (ml *MetricsLimiter) SetMaxRequests(maxRequests int) {
	ml.limiter.SetMaxRequests(maxRequests)
}

// MaxRequests returns the per-window maximum.
func (ml *MetricsLimiter) MaxRequests() int {
	return ml.limiter.MaxRequests()
}

// WindowSize returns the window duration.
func (ml *MetricsLimiter) WindowSize() time.Duration {
	return ml.limiter.WindowSize()
}

// Remaining returns the number of admissions left in the current window.
func (ml *MetricsLimiter) Remaining() int {
	remaining := ml.limiter.Remaining()

	if ml.enabled {
		ml.registry.TokensAvailable.WithLabelValues("fixed_window", ml.name).Set(float64(remaining))
	}

	return remaining
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
