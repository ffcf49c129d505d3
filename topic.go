package switchboard

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// eventHolder boxes a published payload so the latest-value ring can hold
// atomic.Pointer slots (atomic.Pointer needs a concrete pointee type; the
// payload itself is kept as `any` inside the box).
type eventHolder struct {
	payload interface{}
}

// topic is the type-erased, per-name channel state backing a single
// named event stream. It is never exposed directly; Reader[T]/Writer[T]
// impose the static type back on top of it.
type topic struct {
	name    string
	typeTag reflect.Type
	cfg     *Config
	metrics *metrics

	ring        []atomic.Pointer[eventHolder]
	latestIndex atomic.Uint64

	subsMu sync.RWMutex
	subs   []*subscription

	// publishing guards the single-writer-per-topic assumption when
	// DebugChecks is enabled. Cost-free otherwise.
	publishing atomic.Bool
}

func newTopic(name string, typeTag reflect.Type, cfg *Config, m *metrics) *topic {
	return &topic{
		name:    name,
		typeTag: typeTag,
		cfg:     cfg,
		metrics: m,
		ring:    make([]atomic.Pointer[eventHolder], cfg.latestRingSize),
	}
}

// publish installs payload as the new latest event and fans it out to
// every active subscription. The latest-value ring is updated before any
// subscription is enqueued, so an asynchronous reader may observe a
// published event before it has been handed to the subscription queues.
func (t *topic) publish(payload interface{}) uint64 {
	if t.cfg.debugChecks {
		if !t.publishing.CompareAndSwap(false, true) {
			fatalf("WriterConcurrencyViolation", t.name, "", "a second publish() overlapped an in-flight publish()")
		}
		defer t.publishing.Store(false)
	}

	serial := t.latestIndex.Load() + 1
	idx := serial % uint64(len(t.ring))
	old := t.ring[idx].Swap(&eventHolder{payload: payload})
	t.latestIndex.Store(serial)

	if old != nil {
		releaseIfManaged(old.payload)
	}

	t.metrics.published.WithLabelValues(t.name).Inc()

	t.subsMu.RLock()
	subs := t.subs
	for _, s := range subs {
		refIfManaged(payload)
		s.enqueue(payload)
	}
	t.subsMu.RUnlock()

	return serial
}

// latest performs a wait-free read of the most recently published event.
// It rereads the index after the slot load and retries a bounded number
// of times if a publisher tore the read; at the publish rates this
// system targets this loop almost never iterates more than once.
func (t *topic) latest() (interface{}, bool) {
	for attempt := 0; attempt < 4; attempt++ {
		index := t.latestIndex.Load()
		if index == 0 {
			if h := t.ring[0].Load(); h != nil {
				return h.payload, true
			}
			return nil, false
		}
		idx := index % uint64(len(t.ring))
		h := t.ring[idx].Load()
		if t.latestIndex.Load() != index {
			continue // torn read: a publish landed mid-read, retry
		}
		if h == nil {
			return nil, false
		}
		return h.payload, true
	}
	// Extremely unlikely at the publish rates this system targets: fall
	// back to a single untorn-or-not best effort read.
	index := t.latestIndex.Load()
	h := t.ring[index%uint64(len(t.ring))].Load()
	if h == nil {
		return nil, false
	}
	return h.payload, true
}

// schedule appends a new subscription and starts its worker. New
// subscribers do not receive events published before schedule returns.
func (t *topic) schedule(subscriberName string, callback func(interface{}, uint64)) *subscription {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()

	s := newSubscription(t.name, subscriberName, callback, t.cfg, t.metrics)
	s.start()
	t.subs = append(t.subs, s)
	return s
}

// stop halts and joins every subscription on this topic. The topic
// itself, including its latest-value ring, survives.
func (t *topic) stop() {
	t.subsMu.Lock()
	subs := t.subs
	t.subs = nil
	t.subsMu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}
