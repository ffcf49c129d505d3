package switchboard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type trackedPayload struct {
	id       int
	refCount atomic.Int32
}

func (p *trackedPayload) Ref()     { p.refCount.Add(1) }
func (p *trackedPayload) Release() { p.refCount.Add(-1) }

// A ManagedEvent gains one reference per subscription fan-out beyond the
// one the ring slot holds, and loses one reference per holder that is
// done with it (ring overwrite, delivered, or drained).
func TestManagedEventRefCountTracksHolders(t *testing.T) {
	// A one-slot ring, so the second publish below overwrites the slot
	// holding the first payload.
	sb := New(Dependencies{}, WithLatestRingSize(1))
	defer sb.Stop()

	var wg sync.WaitGroup
	wg.Add(3)
	MustSchedule[trackedPayload](sb, "a", "tracked", func(*trackedPayload, uint64) { wg.Done() })
	MustSchedule[trackedPayload](sb, "b", "tracked", func(*trackedPayload, uint64) { wg.Done() })
	MustSchedule[trackedPayload](sb, "c", "tracked", func(*trackedPayload, uint64) { wg.Done() })

	writer := MustGetWriter[trackedPayload](sb, "tracked")
	payload := writer.Allocate()
	payload.id = 1
	payload.refCount.Store(1) // the caller's own initial reference

	writer.Publish(payload)

	wg.Wait()
	time.Sleep(20 * time.Millisecond) // let deliver()'s Release() land

	// Ring slot (1) + three delivered subscriptions (3) Ref'd, then all
	// three delivered Release'd, leaving only the ring's reference.
	if got := payload.refCount.Load(); got != 1 {
		t.Fatalf("refCount after delivery = %d, want 1 (only the ring slot holds a reference)", got)
	}

	// A second publish overwrites the ring slot, releasing the last
	// reference to the first payload.
	second := writer.Allocate()
	second.id = 2
	second.refCount.Store(1)
	wg.Add(3) // the second publish is delivered to all three subscribers too
	writer.Publish(second)

	if got := payload.refCount.Load(); got != 0 {
		t.Fatalf("refCount after ring overwrite = %d, want 0", got)
	}
}

func TestManagedEventReleasedOnDrain(t *testing.T) {
	cfg := newConfig()
	cfg.subscriptionQueueHint = 8
	m := newMetrics(cfg.metricsRegistry)

	s := newSubscription("t", "never-starts-delivering", func(interface{}, uint64) {}, cfg, m)
	// Enqueue directly without starting the worker so every entry is
	// drained, not delivered.
	payloads := make([]*trackedPayload, 4)
	for i := range payloads {
		payloads[i] = &trackedPayload{id: i}
		payloads[i].refCount.Store(1)
		s.queue <- payloads[i]
		s.enqueued.Add(1)
	}

	s.drain()

	for i, p := range payloads {
		if got := p.refCount.Load(); got != 0 {
			t.Fatalf("payload %d refCount after drain = %d, want 0", i, got)
		}
	}
}
