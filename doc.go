/*
Package switchboard implements a typed, thread-safe, in-process publish/
subscribe fabric for wiring together the loosely-coupled components of a
soft-real-time runtime: sensor producers, estimators, and consumers that
want either the latest value on a topic or a callback on every new one.

# Key features

  - Typed topics: each topic name is bound to a Go type the first time a
    Reader, Writer, or Schedule call creates it. Later calls with a
    different type fail at runtime with ErrTypeMismatch.

  - Wait-free latest-value reads: Reader[T].Latest / LatestOrNil never
    block and never allocate on the read path.

  - Per-subscriber delivery: Schedule starts a dedicated goroutine per
    (topic, subscriber) pair with its own bounded queue. When a
    subscriber's queue is full, Publish blocks until that subscriber's
    worker takes an entry, which also delays the fan-out of that event
    to the subscribers after it; a pressure policy (below) makes the
    publisher shed instead of blocking.

  - Configurable overload shedding: a named subscriber can opt into an
    oldest-drop policy once its queue passes a high-water mark.

# Usage

Construct a Switchboard once per process and obtain typed handles from
it. Handles are cheap to create and safe to share across goroutines.

	type ImuSample struct {
	    Seq       int64
	    Timestamp time.Time
	}

	sb := switchboard.New(switchboard.Dependencies{})
	defer sb.Stop()

	writer, err := switchboard.GetWriter[ImuSample](sb, "imu")
	if err != nil {
	    // topic already exists under a different type
	}

	sample := writer.Allocate()
	sample.Seq = 1
	sample.Timestamp = time.Now()
	writer.Publish(sample)

	reader, _ := switchboard.GetReader[ImuSample](sb, "imu")
	latest, ok := reader.LatestOrNil()

	err = switchboard.Schedule[ImuSample](sb, "integrator", "imu",
	    func(sample *ImuSample, iterationNo uint64) {
	        // invoked on a dedicated goroutine for every published sample
	    })

# Overload shedding

	sb := switchboard.New(switchboard.Dependencies{},
	    switchboard.WithPressurePolicy("slow_consumer", switchboard.PressurePolicy{
	        HighWater:  50,
	        DropOldest: true,
	    }))

With this policy in place, "slow_consumer" gets a queue of 50 entries,
and once that queue holds 50 outstanding events the publisher sheds the
oldest one to make room rather than blocking.
*/
package switchboard
