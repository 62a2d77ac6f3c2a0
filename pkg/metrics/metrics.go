// Package metrics exports store lifecycle events as Prometheus metrics.
//
// A Collector implements store.Observer; pass it to every store that should
// be measured:
//
//	collector := metrics.New(metrics.WithNamespace("myapp"))
//	count := store.New(0, store.WithName("count"), store.WithObserver(collector))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vstore/pkg/store"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vstore",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultPanic = "panic"
	ResultCycle = "cycle"
)

// Collector records store events. It is safe for concurrent use.
type Collector struct {
	publishes          *prometheus.CounterVec
	subscriptions      *prometheus.CounterVec
	activeSubscribers  *prometheus.GaugeVec
	subscriberFailures *prometheus.CounterVec
	closes             *prometheus.CounterVec
	settles            *prometheus.CounterVec
	recomputes         *prometheus.CounterVec
}

// New creates a Collector and registers its metrics.
//
// Metrics collected:
//   - vstore_publishes_total: accepted publishes by store
//   - vstore_subscriptions_total: subscriber registrations by store
//   - vstore_active_subscribers: currently registered subscribers by store
//   - vstore_subscriber_failures_total: recovered subscriber panics by store
//   - vstore_closes_total: closed stores
//   - vstore_async_settles_total: async initializers settled, by result
//   - vstore_recomputes_total: computed evaluations, by result
//
// New panics if the metrics are already registered with the registry, as
// promauto does.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Collector{
		publishes:     counter("publishes_total", "Total number of accepted publishes", "store"),
		subscriptions: counter("subscriptions_total", "Total number of subscriber registrations", "store"),
		activeSubscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_subscribers",
			Help:        "Number of currently registered subscribers",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),
		subscriberFailures: counter("subscriber_failures_total", "Total number of subscriber panics", "store"),
		closes:             counter("closes_total", "Total number of closed stores", "store"),
		settles:            counter("async_settles_total", "Total number of settled async initializers", "store", "result"),
		recomputes:         counter("recomputes_total", "Total number of computed store evaluations", "store", "result"),
	}
}

// StorePublished implements store.Observer.
func (c *Collector) StorePublished(name string) {
	c.publishes.WithLabelValues(name).Inc()
}

// StoreSubscribed implements store.Observer.
func (c *Collector) StoreSubscribed(name string) {
	c.subscriptions.WithLabelValues(name).Inc()
	c.activeSubscribers.WithLabelValues(name).Inc()
}

// StoreUnsubscribed implements store.Observer.
func (c *Collector) StoreUnsubscribed(name string) {
	c.activeSubscribers.WithLabelValues(name).Dec()
}

// StoreClosed implements store.Observer.
func (c *Collector) StoreClosed(name string) {
	c.closes.WithLabelValues(name).Inc()
}

// SubscriberFailed implements store.Observer.
func (c *Collector) SubscriberFailed(name string) {
	c.subscriberFailures.WithLabelValues(name).Inc()
}

// StoreSettled implements store.Observer.
func (c *Collector) StoreSettled(name string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.settles.WithLabelValues(name, result).Inc()
}

// StoreRecomputed implements store.Observer.
func (c *Collector) StoreRecomputed(name string, err error) {
	c.recomputes.WithLabelValues(name, recomputeResult(err)).Inc()
}

// recomputeResult maps a combiner error to a low-cardinality label.
func recomputeResult(err error) string {
	var combineErr *store.CombineError
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, store.ErrCycle):
		return ResultCycle
	case errors.As(err, &combineErr):
		return ResultPanic
	default:
		return ResultError
	}
}

var _ store.Observer = (*Collector)(nil)
