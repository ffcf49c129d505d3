package switchboard

// ManagedEvent is an optional interface an event payload may implement
// when it wraps a resource the Go garbage collector does not reclaim on
// its own (a file descriptor, a pooled buffer, foreign memory). The
// Switchboard calls Ref once per additional holder an event gains beyond
// the one installed by Publish (one call per fanned-out subscription
// queue) and Release once per holder that has finished with it (the
// ring slot being overwritten by a later publish, and each subscription
// dequeuing the event whether delivered to the callback or drained at
// shutdown). Ordinary payloads need not implement it.
type ManagedEvent interface {
	Ref()
	Release()
}

func refIfManaged(v interface{}) {
	if m, ok := v.(ManagedEvent); ok {
		m.Ref()
	}
}

func releaseIfManaged(v interface{}) {
	if m, ok := v.(ManagedEvent); ok {
		m.Release()
	}
}
