// Package deadletter collects payloads the upstream dispatcher could
// not deliver, so they can be reprocessed offline instead of being
// silently dropped.
package deadletter

import (
	"context"
	"sync"
	"time"

	"contact-gateway-server/pkg/models"
)

// FailedSubmission is one undeliverable payload together with the
// failure reason and the time it was recorded.
type FailedSubmission struct {
	Payload  *models.ValidatedPayload `json:"payload"`
	Reason   string                   `json:"reason"`
	FailedAt time.Time                `json:"failedAt"`
}

// Sink receives payloads the dispatcher failed to forward. Enqueue is
// best-effort from the caller's point of view: a sink error is logged
// by the dispatcher but never changes the client-facing response.
type Sink interface {
	Enqueue(ctx context.Context, payload *models.ValidatedPayload, reason string) error
	Close() error
}

// NoopSink discards failed payloads. Used when dead-lettering is
// disabled.
type NoopSink struct{}

func (NoopSink) Enqueue(context.Context, *models.ValidatedPayload, string) error { return nil }
func (NoopSink) Close() error                                                    { return nil }

// MemorySink keeps failed payloads in memory. It backs tests and
// serves as a cheap default when durability is not required.
type MemorySink struct {
	mu      sync.Mutex
	entries []FailedSubmission
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Enqueue(_ context.Context, payload *models.ValidatedPayload, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, FailedSubmission{
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	})
	return nil
}

func (s *MemorySink) Close() error { return nil }

// Entries returns a copy of everything enqueued so far.
func (s *MemorySink) Entries() []FailedSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedSubmission, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of enqueued payloads, for health metrics.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
