package switchboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultLatestRingSize       = 256
	defaultSubscriptionQueueHint = 8
	defaultWorkerPollInterval   = 100 * time.Millisecond
)

// PressurePolicy configures the oldest-drop overload valve for a single
// named subscriber. It is opted into by subscriber name; subscribers
// absent from Config.pressurePolicies never have events dropped on
// their behalf.
type PressurePolicy struct {
	// HighWater is the largest queue depth the subscriber keeps: when its
	// queue already holds HighWater entries, the publisher evicts the
	// oldest one (via a timed dequeue) before enqueuing a new one. The
	// subscriber's queue capacity is raised to HighWater when that is
	// larger than the subscription queue hint.
	HighWater int
	// DropOldest must be true for the policy to take effect; it exists so
	// a policy can be registered and later disabled without removing it.
	DropOldest bool
}

// Config holds the process-wide options recognized by a Switchboard.
// Construct via New(opts...); do not mutate after New returns.
type Config struct {
	latestRingSize        int
	subscriptionQueueHint int
	workerPollInterval    time.Duration
	pressurePolicies      map[string]PressurePolicy
	debugChecks           bool
	metricsRegistry       *prometheus.Registry
}

// Option configures a Switchboard at construction time. The shape is
// grounded in the functional-options pattern used by pkg/fx and
// pkg/env.Manager's Options in the retrieval pack.
type Option func(*Config)

// WithLatestRingSize overrides the depth of each topic's latest-value
// ring. Must be >= 1; values less than 1 are clamped to 1.
func WithLatestRingSize(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.latestRingSize = n
	}
}

// WithSubscriptionQueueHint overrides the steady-state subscription queue
// capacity. Must be >= 1; values less than 1 are clamped to 1.
func WithSubscriptionQueueHint(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.subscriptionQueueHint = n
	}
}

// WithWorkerPollInterval overrides the subscription worker's dequeue
// timeout.
func WithWorkerPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.workerPollInterval = d
		}
	}
}

// WithPressurePolicy registers an overload-shedding policy for one named
// subscriber. Calling it more than once for the same name replaces the
// policy.
func WithPressurePolicy(subscriberName string, policy PressurePolicy) Option {
	return func(c *Config) {
		c.pressurePolicies[subscriberName] = policy
	}
}

// WithDebugChecks enables the single-writer concurrency assertion on
// publish and makes a shutdown drain accounting mismatch panic instead of
// only logging; both are off by default for performance. The type-tag
// check made when a handle is obtained runs regardless of this option.
func WithDebugChecks(enabled bool) Option {
	return func(c *Config) { c.debugChecks = enabled }
}

// WithMetricsRegistry attaches a caller-owned Prometheus registry that
// the Switchboard registers its collectors into. When omitted, New
// creates a private registry reachable via (*Switchboard).Metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) { c.metricsRegistry = reg }
}

func newConfig(opts ...Option) *Config {
	c := &Config{
		latestRingSize:        defaultLatestRingSize,
		subscriptionQueueHint: defaultSubscriptionQueueHint,
		workerPollInterval:    defaultWorkerPollInterval,
		pressurePolicies:      make(map[string]PressurePolicy),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metricsRegistry == nil {
		c.metricsRegistry = prometheus.NewRegistry()
	}
	return c
}

func (c *Config) pressurePolicyFor(subscriberName string) (PressurePolicy, bool) {
	p, ok := c.pressurePolicies[subscriberName]
	if !ok || !p.DropOldest || p.HighWater <= 0 {
		return PressurePolicy{}, false
	}
	return p, true
}
