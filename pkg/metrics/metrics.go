// Package metrics provides Prometheus instrumentation for goadmit components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for goadmit components.
type Registry struct {
	// Admission Metrics
	AdmissionRequests *prometheus.CounterVec
	AdmissionAllowed  *prometheus.CounterVec
	AdmissionDenied   *prometheus.CounterVec
	AdmissionWaitTime *prometheus.HistogramVec
	TokensAvailable   *prometheus.GaugeVec
	QueueDepth        *prometheus.GaugeVec

	// Concurrency Metrics
	ConcurrencyActive  *prometheus.GaugeVec
	ConcurrencyWaiting *prometheus.GaugeVec

	// Drain Task Metrics
	DrainTicks      *prometheus.CounterVec
	DrainedRequests *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by goadmit components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

var (
	registriesMu sync.Mutex
	registries   = make(map[prometheus.Registerer]*Registry)
)

// NewRegistry returns the metrics registry for the given Prometheus
// registerer, creating it on first use. Registries are memoized per
// registerer: all collectors are label vectors keyed by limiter name,
// so every component sharing a registerer shares one set of collectors
// instead of attempting a duplicate registration.
func NewRegistry(reg prometheus.Registerer) *Registry {
	registriesMu.Lock()
	defer registriesMu.Unlock()

	if r, ok := registries[reg]; ok {
		return r
	}
	r := newRegistry(reg)
	registries[reg] = r
	return r
}

func newRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		AdmissionRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "requests_total",
				Help:      "Total number of admission requests",
			},
			[]string{"strategy", "limiter_name"},
		),

		AdmissionAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "allowed_total",
				Help:      "Total number of allowed requests",
			},
			[]string{"strategy", "limiter_name"},
		),

		AdmissionDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "denied_total",
				Help:      "Total number of denied requests",
			},
			[]string{"strategy", "limiter_name"},
		),

		AdmissionWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting for admission",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy", "limiter_name"},
		),

		TokensAvailable: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "tokens_available",
				Help:      "Number of tokens currently available",
			},
			[]string{"strategy", "limiter_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goadmit",
				Subsystem: "admission",
				Name:      "queue_depth",
				Help:      "Number of requests currently queued",
			},
			[]string{"strategy", "limiter_name"},
		),

		ConcurrencyActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goadmit",
				Subsystem: "concurrency",
				Name:      "active",
				Help:      "Number of operations currently in flight",
			},
			[]string{"limiter_name"},
		),

		ConcurrencyWaiting: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goadmit",
				Subsystem: "concurrency",
				Name:      "waiting",
				Help:      "Number of callers waiting for a concurrency slot",
			},
			[]string{"limiter_name"},
		),

		DrainTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goadmit",
				Subsystem: "drain",
				Name:      "ticks_total",
				Help:      "Total number of leak/drain steps executed",
			},
			[]string{"limiter_name"},
		),

		DrainedRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goadmit",
				Subsystem: "drain",
				Name:      "requests_total",
				Help:      "Total number of queued requests drained",
			},
			[]string{"limiter_name"},
		),
	}
}
