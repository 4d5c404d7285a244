package relay

import (
	"time"

	"github.com/google/uuid"
)

// EnvelopeState tracks a dispatch through its lifecycle.
type EnvelopeState string

const (
	StatePending        EnvelopeState = "pending"
	StateSent           EnvelopeState = "sent"
	StateCompleted      EnvelopeState = "completed"
	StateTimedOut       EnvelopeState = "timed_out"
	StateConnectionLost EnvelopeState = "connection_lost"
	StateFailed         EnvelopeState = "failed"
)

// Envelope wraps one dispatched operation with its correlation metadata.
// Correlation IDs are unique per dispatch, never reused across retries: a
// retried read gets a fresh envelope so a late response to the first attempt
// cannot be mistaken for the second.
type Envelope struct {
	CorrelationID string
	State         EnvelopeState
	StartedAt     time.Time
	Deadline      time.Time
	Attempt       int
}

func newEnvelope(attempt int, now time.Time, timeout time.Duration) *Envelope {
	return &Envelope{
		CorrelationID: uuid.NewString(),
		State:         StatePending,
		StartedAt:     now,
		Deadline:      now.Add(timeout),
		Attempt:       attempt,
	}
}
