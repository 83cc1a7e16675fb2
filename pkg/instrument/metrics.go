package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/decantr-dev/decantr/pkg/state"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "decantr").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for run and flush duration.
	// Default: exponential from 1µs to ~1s.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "decantr",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 11),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a state.Observer that records Prometheus metrics.
type Metrics struct {
	flushes       prometheus.Counter
	flushPasses   prometheus.Histogram
	flushDuration prometheus.Histogram
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	skipped       prometheus.Counter
}

var _ state.Observer = (*Metrics)(nil)

// NewMetrics registers the metrics with the configured registry and returns
// the observer. Registering twice with the same registry panics, as with any
// promauto collector; share one Metrics between runtimes instead.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes",
			Help:        "Number of queue drains per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10, 50, 100, 1000},
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush wall time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "runs_total",
			Help:        "Total number of effect and memo runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_duration_seconds",
			Help:        "Effect and memo run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "skipped_total",
			Help:        "Queued effects that turned out not to need a run",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushStarted implements state.Observer.
func (m *Metrics) FlushStarted() {}

// FlushFinished implements state.Observer.
func (m *Metrics) FlushFinished(s state.FlushStats) {
	m.flushes.Inc()
	m.flushPasses.Observe(float64(s.Passes))
	m.flushDuration.Observe(s.Duration.Seconds())
	m.skipped.Add(float64(s.Skipped))
}

// Ran implements state.Observer.
func (m *Metrics) Ran(info state.RunInfo) {
	kind := info.Kind.String()
	status := "ok"
	if info.Failed {
		status = "error"
	}
	m.runs.WithLabelValues(kind, status).Inc()
	m.runDuration.WithLabelValues(kind).Observe(info.Duration.Seconds())
}
