package switchboard

import (
	"reflect"
	"sync"
)

// registry is the topic-name → *topic map backing a Switchboard. It is
// insertion-only during normal operation: stopAll halts every topic's
// subscriptions but never removes an entry, so outstanding Reader/Writer
// handles stay valid through teardown.
type registry struct {
	mu      sync.RWMutex
	topics  map[string]*topic
	cfg     *Config
	metrics *metrics
}

func newRegistry(cfg *Config, m *metrics) *registry {
	return &registry{
		topics:  make(map[string]*topic),
		cfg:     cfg,
		metrics: m,
	}
}

// getOrCreate returns the Topic for name, creating it with typeTag if it
// does not exist yet. Concurrent creators of the same name converge on
// the same Topic; a name that already exists with a different type tag
// fails with ErrTypeMismatch.
func (r *registry) getOrCreate(name string, typeTag reflect.Type) (*topic, error) {
	r.mu.RLock()
	if t, ok := r.topics[name]; ok {
		r.mu.RUnlock()
		if t.typeTag != typeTag {
			return nil, newTypeMismatchError(name, t.typeTag.String(), typeTag.String())
		}
		return t, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.topics[name]; ok {
		if t.typeTag != typeTag {
			return nil, newTypeMismatchError(name, t.typeTag.String(), typeTag.String())
		}
		return t, nil
	}

	t := newTopic(name, typeTag, r.cfg, r.metrics)
	r.topics[name] = t
	r.metrics.topics.Set(float64(len(r.topics)))
	return t, nil
}

// stopAll halts every topic's subscription workers. Topics remain in the
// registry: outstanding handles must stay usable for Latest/Publish
// through teardown.
func (r *registry) stopAll() {
	r.mu.RLock()
	topics := make([]*topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	r.mu.RUnlock()

	for _, t := range topics {
		t.stop()
	}
}
