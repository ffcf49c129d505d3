// Package switchboard implements a typed, named, multi-producer /
// multi-consumer in-process event bus: a latest-value ring per topic for
// wait-free asynchronous reads, and a bounded per-subscriber queue with a
// dedicated worker goroutine for callback delivery. It decouples
// producers (sensors, estimators) from consumers (integrators,
// renderers) without imposing cross-topic ordering or guaranteed
// delivery to a slow subscriber.
package switchboard

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies is reserved for future collaborator lookup (a
// phonebook-style dependency injection at construction time). It is
// currently a no-op placeholder.
type Dependencies struct{}

// Switchboard is the typed pub/sub fabric's public entry point. Obtain
// it once per process with New; obtain topic-scoped handles with
// GetWriter, GetReader, and Schedule.
type Switchboard struct {
	cfg      *Config
	registry *registry
	metrics  *metrics

	stopOnce sync.Once
	stopped  atomic.Bool
}

// New constructs a Switchboard. deps is reserved for future use (see
// Dependencies); pass the zero value today.
func New(deps Dependencies, opts ...Option) *Switchboard {
	cfg := newConfig(opts...)
	m := newMetrics(cfg.metricsRegistry)
	return &Switchboard{
		cfg:      cfg,
		registry: newRegistry(cfg, m),
		metrics:  m,
	}
}

// Metrics returns the Switchboard's Prometheus registry, suitable for
// mounting behind an HTTP handler or scraping directly in tests.
func (sb *Switchboard) Metrics() *prometheus.Registry {
	return sb.cfg.metricsRegistry
}

// Stop halts callback delivery fabric-wide. It is idempotent. After Stop
// returns, every event enqueued before the call has either been
// delivered or drained; no further callback invocation occurs. Existing
// Reader/Writer handles remain usable: Latest keeps returning the
// latest-value ring's contents, and Publish keeps accepting events (they
// simply have no subscriptions left to fan out to). GetWriter, GetReader,
// and Schedule themselves refuse to hand out any further handle once
// stopped, failing with ErrClosed.
func (sb *Switchboard) Stop() {
	sb.stopOnce.Do(func() {
		sb.stopped.Store(true)
		sb.registry.stopAll()
	})
}
