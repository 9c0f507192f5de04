package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "obsrv").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for computed and action durations.
	// Default: prometheus.DefBuckets
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

// WithBuckets sets the histogram buckets.
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
		Namespace: "obsrv",
		Subsystem: "store",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is an obsrv.Observer that records Prometheus metrics.
//
// Metrics collected (with the default namespace and subsystem):
//   - obsrv_store_writes_total: field writes by path and status
//   - obsrv_store_computed_reads_total: computed evaluations by name
//   - obsrv_store_computed_duration_seconds: computed evaluation time
//   - obsrv_store_actions_total: action calls by name and status
//   - obsrv_store_action_duration_seconds: action run time
//   - obsrv_store_errors_total: failed operations by error category
type Metrics struct {
	writesTotal      *prometheus.CounterVec
	computedTotal    *prometheus.CounterVec
	computedDuration *prometheus.HistogramVec
	actionsTotal     *prometheus.CounterVec
	actionDuration   *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
}

// metricsKey identifies one collector set. Collectors with a distinct
// namespace or subsystem have distinct names and can share a registry.
type metricsKey struct {
	registry  prometheus.Registerer
	namespace string
	subsystem string
}

// registered caches collector sets so repeated Prometheus calls (one per
// store construction) do not register collectors twice.
var (
	registered   = map[metricsKey]*Metrics{}
	registeredMu sync.Mutex
)

// Prometheus returns the metrics observer for the configured registry,
// namespace and subsystem, creating and registering its collectors on
// first use. ConstLabels and Buckets are fixed by that first call.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	key := metricsKey{config.Registry, config.Namespace, config.Subsystem}

	registeredMu.Lock()
	defer registeredMu.Unlock()

	if m, ok := registered[key]; ok {
		return m
	}
	m := initMetrics(config)
	registered[key] = m
	return m
}

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of field writes",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "status"}),

		computedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_reads_total",
			Help:        "Total number of computed evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"name"}),

		computedDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computed_duration_seconds",
			Help:        "Computed evaluation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of action calls",
			ConstLabels: config.ConstLabels,
		}, []string{"name", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_duration_seconds",
			Help:        "Action run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"name"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed store operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "category"}),
	}
}

// ObserveWrite implements obsrv.Observer.
func (m *Metrics) ObserveWrite(ctx context.Context, path string, next func() error) error {
	err := next()
	m.writesTotal.WithLabelValues(path, status(err)).Inc()
	if err != nil {
		m.errorsTotal.WithLabelValues("write", categorizeError(err)).Inc()
	}
	return err
}

// ObserveComputed implements obsrv.Observer.
func (m *Metrics) ObserveComputed(ctx context.Context, name string, next func() (any, error)) (any, error) {
	start := time.Now()
	v, err := next()
	m.computedDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	m.computedTotal.WithLabelValues(name).Inc()
	if err != nil {
		m.errorsTotal.WithLabelValues("computed", categorizeError(err)).Inc()
	}
	return v, err
}

// ObserveAction implements obsrv.Observer.
func (m *Metrics) ObserveAction(ctx context.Context, name string, next func() (any, error)) (any, error) {
	start := time.Now()
	v, err := next()
	m.actionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	m.actionsTotal.WithLabelValues(name, status(err)).Inc()
	if err != nil {
		m.errorsTotal.WithLabelValues("action", categorizeError(err)).Inc()
	}
	return v, err
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// categorizeError returns a low-cardinality label for err.
func categorizeError(err error) string {
	var oe *oerrors.Error
	if errors.As(err, &oe) && oe.Category != "" {
		return string(oe.Category)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "user"
}
