package switchboard

import (
	"context"
	"fmt"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	subStateInitial int32 = iota
	subStateRunning
	subStateStopping
	subStateStopped
)

// subscription is one (topic, subscriber) pair: a bounded queue and a
// dedicated worker goroutine that delivers every event to the
// subscriber's callback in publish order.
type subscription struct {
	id             uuid.UUID
	topicName      string
	subscriberName string
	callback       func(interface{}, uint64)

	cfg     *Config
	metrics *metrics

	queue chan interface{}

	enqueued   atomic.Uint64
	dequeued   atomic.Uint64
	idleCycles atomic.Uint64

	state  atomic.Int32
	stopCh chan struct{}
	doneCh chan struct{}
}

func newSubscription(topicName, subscriberName string, callback func(interface{}, uint64), cfg *Config, m *metrics) *subscription {
	// A subscriber with a pressure policy gets room for HighWater entries,
	// so its valve can trip even when HighWater exceeds the queue hint.
	capacity := cfg.subscriptionQueueHint
	if p, ok := cfg.pressurePolicyFor(subscriberName); ok && p.HighWater > capacity {
		capacity = p.HighWater
	}
	return &subscription{
		id:             uuid.New(),
		topicName:      topicName,
		subscriberName: subscriberName,
		callback:       callback,
		cfg:            cfg,
		metrics:        m,
		queue:          make(chan interface{}, capacity),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// threadLabel names the worker for profiling: "s" + subscriber name +
// up to the first 12 characters of the topic name.
func (s *subscription) threadLabel() string {
	topic := s.topicName
	if len(topic) > 12 {
		topic = topic[:12]
	}
	return "s" + s.subscriberName + topic
}

func (s *subscription) start() {
	s.state.Store(subStateRunning)
	go pprof.Do(context.Background(), pprof.Labels("switchboard_worker", s.threadLabel(), "subscription_id", s.id.String()), func(context.Context) {
		s.run()
	})
}

// stop halts and joins the worker, draining any remaining queued events.
// Idempotent: a subscription stopped twice only joins once.
func (s *subscription) stop() {
	if s.state.CompareAndSwap(subStateRunning, subStateStopping) {
		close(s.stopCh)
	}
	<-s.doneCh
}

func (s *subscription) run() {
	defer func() {
		s.state.Store(subStateStopped)
		close(s.doneCh)
	}()

	timer := time.NewTimer(s.cfg.workerPollInterval)
	defer timer.Stop()

	for {
		timer.Reset(s.cfg.workerPollInterval)
		select {
		case <-s.stopCh:
			timer.Stop()
			s.drain()
			logDebug("subscription stopped: topic=%q subscriber=%q id=%s enqueued=%d dequeued=%d idle=%d",
				s.topicName, s.subscriberName, s.id, s.enqueued.Load(), s.dequeued.Load(), s.idleCycles.Load())
			return
		case payload := <-s.queue:
			timer.Stop()
			n := s.dequeued.Add(1)
			s.deliver(payload, n)
		case <-timer.C:
			s.idleCycles.Add(1)
		}
	}
}

func (s *subscription) deliver(payload interface{}, iterationNo uint64) {
	defer func() {
		if r := recover(); r != nil {
			logFatalDiagnostic("CallbackPanic", s.topicName, s.subscriberName,
				fmt.Sprintf("iteration=%d panic=%v", iterationNo, r))
			// Deliberately not recovering further: an unrecovered panic in
			// this goroutine crashes the process. A callback that panics is
			// a programming error, not a condition to mask and continue.
			panic(r)
		}
	}()
	s.callback(payload, iterationNo)
	releaseIfManaged(payload)
	s.metrics.delivered.WithLabelValues(s.topicName, s.subscriberName).Inc()
	s.metrics.queueSize.WithLabelValues(s.topicName, s.subscriberName).Set(float64(len(s.queue)))
}

// enqueue hands payload to this subscription's queue, applying the
// pressure-valve policy first when one is configured for this
// subscriber's name.
func (s *subscription) enqueue(payload interface{}) {
	if policy, ok := s.cfg.pressurePolicyFor(s.subscriberName); ok && len(s.queue) >= policy.HighWater {
		s.dropOldest()
	}
	s.queue <- payload
	s.enqueued.Add(1)
	s.metrics.queueSize.WithLabelValues(s.topicName, s.subscriberName).Set(float64(len(s.queue)))
}

func (s *subscription) dropOldest() {
	timer := time.NewTimer(s.cfg.workerPollInterval)
	defer timer.Stop()
	select {
	case old := <-s.queue:
		s.dequeued.Add(1)
		releaseIfManaged(old)
		s.metrics.dropped.WithLabelValues(s.topicName, s.subscriberName).Inc()
	case <-timer.C:
	}
}

// drain releases every entry left in the queue without invoking the
// callback. It is only called from run() after the subscription has
// been removed from its topic, so no further enqueue can race with it.
func (s *subscription) drain() {
	outstanding := s.enqueued.Load() - s.dequeued.Load()
	var drained uint64
	for drained < outstanding {
		select {
		case payload := <-s.queue:
			releaseIfManaged(payload)
			s.dequeued.Add(1)
			drained++
		default:
			// The queue emptied before accounting reached the expected
			// outstanding count: a bug in the enqueue/dequeue bookkeeping.
			if s.cfg.debugChecks {
				fatalf("QueueDrainFailure", s.topicName, s.subscriberName,
					"expected %d outstanding entries, only drained %d", outstanding, drained)
			}
			logFatalDiagnostic("QueueDrainFailure", s.topicName, s.subscriberName,
				fmt.Sprintf("expected %d outstanding entries, only drained %d", outstanding, drained))
			return
		}
	}
}
