package switchboard

import "reflect"

// Writer publishes events of type T to the named topic it was obtained
// for. It is a thin façade over a *topic.
type Writer[T any] struct {
	t *topic
}

// Reader reads the most recent event of type T published to the named
// topic it was obtained for.
type Reader[T any] struct {
	t *topic
}

func typeTagFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// GetWriter returns a handle for publishing T-typed events to topicName,
// creating the topic if it does not exist yet. It fails with
// ErrTypeMismatch if topicName already exists for a different type, or
// with ErrClosed if sb has already been stopped.
func GetWriter[T any](sb *Switchboard, topicName string) (*Writer[T], error) {
	if sb.stopped.Load() {
		return nil, ErrClosed
	}
	t, err := sb.registry.getOrCreate(topicName, typeTagFor[T]())
	if err != nil {
		return nil, err
	}
	return &Writer[T]{t: t}, nil
}

// MustGetWriter is GetWriter, but panics instead of returning an error —
// for callers that want the original's assert-on-TypeMismatch behavior.
func MustGetWriter[T any](sb *Switchboard, topicName string) *Writer[T] {
	w, err := GetWriter[T](sb, topicName)
	if err != nil {
		panic(err)
	}
	return w
}

// GetReader returns a handle for reading T-typed events from topicName,
// creating the topic if it does not exist yet. It fails with
// ErrTypeMismatch if topicName already exists for a different type, or
// with ErrClosed if sb has already been stopped.
func GetReader[T any](sb *Switchboard, topicName string) (*Reader[T], error) {
	if sb.stopped.Load() {
		return nil, ErrClosed
	}
	t, err := sb.registry.getOrCreate(topicName, typeTagFor[T]())
	if err != nil {
		return nil, err
	}
	return &Reader[T]{t: t}, nil
}

// MustGetReader is GetReader, but panics instead of returning an error.
func MustGetReader[T any](sb *Switchboard, topicName string) *Reader[T] {
	r, err := GetReader[T](sb, topicName)
	if err != nil {
		panic(err)
	}
	return r
}

// Schedule registers callback to run on a dedicated worker goroutine for
// every event subsequently published to topicName, under subscriberName
// for diagnostics. New subscribers never receive events published before
// Schedule returns. It fails with ErrClosed if sb has already been
// stopped.
func Schedule[T any](sb *Switchboard, subscriberName, topicName string, callback func(*T, uint64)) error {
	if sb.stopped.Load() {
		return ErrClosed
	}
	t, err := sb.registry.getOrCreate(topicName, typeTagFor[T]())
	if err != nil {
		return err
	}
	t.schedule(subscriberName, func(payload interface{}, iterationNo uint64) {
		callback(payload.(*T), iterationNo)
	})
	return nil
}

// MustSchedule is Schedule, but panics instead of returning an error.
func MustSchedule[T any](sb *Switchboard, subscriberName, topicName string, callback func(*T, uint64)) {
	if err := Schedule[T](sb, subscriberName, topicName, callback); err != nil {
		panic(err)
	}
}

// Allocate constructs a new, zero-valued T for the caller to fill in
// before Publish. It is an extension point: a future implementation may
// pool or slab-allocate these buffers instead; the interface makes no
// guarantee this returns a fresh heap allocation.
func (w *Writer[T]) Allocate() *T {
	return new(T)
}

// Publish hands payload to the topic as the new latest event and fans it
// out to every active subscription, returning the event's serial
// number. After this call the caller should treat payload as read-only;
// ownership has passed to the Switchboard.
func (w *Writer[T]) Publish(payload *T) uint64 {
	return w.t.publish(payload)
}

// LatestOrNil returns the most recently published event, or (nil, false)
// if nothing has been published yet on this topic.
func (r *Reader[T]) LatestOrNil() (*T, bool) {
	v, ok := r.t.latest()
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Latest returns the most recently published event, or ErrNoEventYet if
// nothing has been published yet on this topic.
func (r *Reader[T]) Latest() (*T, error) {
	v, ok := r.t.latest()
	if !ok {
		return nil, ErrNoEventYet
	}
	return v.(*T), nil
}

// LatestMut returns an independently owned, mutable copy of the latest
// event; mutating it never affects other observers. If nothing has been
// published yet, it returns a fresh zero-valued T, mirroring Allocate.
func (r *Reader[T]) LatestMut() *T {
	v, ok := r.t.latest()
	if !ok {
		return new(T)
	}
	cp := *v.(*T)
	return &cp
}
