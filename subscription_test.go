package switchboard

import (
	"sync"
	"testing"
	"time"
)

func TestSubscriptionDrainsOutstandingEventsOnStop(t *testing.T) {
	cfg := newConfig()
	cfg.workerPollInterval = 10 * time.Millisecond
	cfg.subscriptionQueueHint = 32
	m := newMetrics(cfg.metricsRegistry)

	blocker := make(chan struct{})
	var delivered int
	var mu sync.Mutex

	s := newSubscription("t", "slow", func(interface{}, uint64) {
		<-blocker // hold the worker inside the callback
		mu.Lock()
		delivered++
		mu.Unlock()
	}, cfg, m)
	s.start()

	// The first event is picked up immediately and blocks inside the
	// callback; the rest pile up in the queue.
	for i := 0; i < 5; i++ {
		s.enqueue(i)
	}
	time.Sleep(20 * time.Millisecond) // let the worker pick up the first one

	close(blocker) // release the callback so the worker proceeds
	s.stop()

	mu.Lock()
	defer mu.Unlock()
	if delivered == 0 {
		t.Fatal("expected at least the in-flight event to be delivered")
	}
	outstanding := s.enqueued.Load() - s.dequeued.Load()
	if outstanding != 0 {
		t.Fatalf("after stop, enqueued-dequeued = %d, want 0 (fully drained)", outstanding)
	}
}

func TestSubscriptionPressureValveDropsOldest(t *testing.T) {
	cfg := newConfig()
	cfg.workerPollInterval = 10 * time.Millisecond
	cfg.subscriptionQueueHint = 100
	cfg.pressurePolicies["heavy"] = PressurePolicy{HighWater: 2, DropOldest: true}
	m := newMetrics(cfg.metricsRegistry)

	blocker := make(chan struct{})
	s := newSubscription("t", "heavy", func(interface{}, uint64) {
		<-blocker
	}, cfg, m)
	s.start()
	defer func() {
		close(blocker)
		s.stop()
	}()

	// First event occupies the worker inside the callback; the next
	// three land in the queue, tripping the high-water mark on the third.
	for i := 0; i < 4; i++ {
		s.enqueue(i)
	}
	time.Sleep(20 * time.Millisecond)

	// dequeued counts the worker's own pickup plus every valve drop.
	if s.dequeued.Load() < 2 {
		t.Fatal("expected the pressure valve to have dropped at least one entry")
	}
	if qlen := len(s.queue); qlen > 3 {
		t.Fatalf("queue length = %d after shedding, want <= 3", qlen)
	}
}

func TestSubscriptionStopIsIdempotent(t *testing.T) {
	cfg := newConfig()
	m := newMetrics(cfg.metricsRegistry)
	s := newSubscription("t", "sub", func(interface{}, uint64) {}, cfg, m)
	s.start()

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			s.stop()
		}()
	}
	wg.Wait()

	if s.state.Load() != subStateStopped {
		t.Fatalf("state = %d after concurrent stop(), want stopped", s.state.Load())
	}
}
