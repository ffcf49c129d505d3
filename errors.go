package switchboard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the contract violations and recoverable conditions
// described by the Switchboard's error taxonomy. Only ErrNoEventYet is
// routinely expected to be handled by callers. ErrTypeMismatch and
// ErrClosed indicate a bug in the caller's usage and are surfaced as
// errors so the caller can choose how loudly to fail (see
// MustGetWriter/MustGetReader/MustSchedule for a panic-on-violation
// alternative). ErrWriterConcurrencyViolation and ErrQueueDrainFailure
// name fatal conditions; no function returns them, and the conditions
// are reported by a logged diagnostic and a panic.
var (
	// ErrTypeMismatch is returned when a handle's type disagrees with the
	// topic's established type tag.
	ErrTypeMismatch = errors.New("switchboard: type mismatch")

	// ErrNoEventYet is returned by Reader.Latest when no event has ever
	// been published on the topic.
	ErrNoEventYet = errors.New("switchboard: no event published yet")

	// ErrWriterConcurrencyViolation names the condition of two publishers
	// racing on the same topic, detected while debug checks are enabled.
	ErrWriterConcurrencyViolation = errors.New("switchboard: concurrent publish on single-writer topic")

	// ErrQueueDrainFailure names the condition of a subscription's
	// shutdown drain not accounting for every outstanding queued event.
	ErrQueueDrainFailure = errors.New("switchboard: queue drain accounting mismatch")

	// ErrClosed is returned by GetWriter, GetReader, and Schedule once the
	// Switchboard they were called on has been stopped. Handles obtained
	// before Stop remain usable; Publish on one of them after Stop simply
	// has no subscriptions left to fan out to.
	ErrClosed = errors.New("switchboard: stopped")
)

// typeMismatchError carries the diagnostic detail (topic name, expected
// and actual type) that a bare sentinel can't. It still satisfies
// errors.Is(err, ErrTypeMismatch) via Unwrap.
type typeMismatchError struct {
	topic    string
	expected string
	actual   string
}

func (e *typeMismatchError) Error() string {
	return fmt.Sprintf("switchboard: topic %q expects type %s, got %s", e.topic, e.expected, e.actual)
}

func (e *typeMismatchError) Unwrap() error { return ErrTypeMismatch }

func newTypeMismatchError(topic, expected, actual string) error {
	return &typeMismatchError{topic: topic, expected: expected, actual: actual}
}
