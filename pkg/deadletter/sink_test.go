package deadletter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/models"
)

func samplePayload(requestID string) *models.ValidatedPayload {
	return &models.ValidatedPayload{
		RequestID: requestID,
		Name:      "Alice",
		Email:     "a@b.co",
		Subject:   "Hi",
		Message:   "Hello there",
		Timestamp: "2026-08-25T10:00:00Z",
	}
}

func TestMemorySink_Enqueue(t *testing.T) {
	sink := NewMemorySink()

	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-1"), "upstream status 500"))
	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-2"), "transport: refused"))

	assert.Equal(t, 2, sink.Len())

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].Payload.RequestID)
	assert.Equal(t, "upstream status 500", entries[0].Reason)
	assert.False(t, entries[0].FailedAt.IsZero())
}

func TestMemorySink_EntriesReturnsCopy(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-1"), "x"))

	entries := sink.Entries()
	entries[0].Reason = "mutated"

	assert.Equal(t, "x", sink.Entries()[0].Reason)
}

func TestNoopSink(t *testing.T) {
	sink := NoopSink{}
	assert.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-1"), "x"))
	assert.NoError(t, sink.Close())
}

func TestBadgerSink_EnqueueAndPending(t *testing.T) {
	sink, err := NewBadgerSink(t.TempDir(), time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-a"), "upstream status 503"))
	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-b"), "transport: timeout"))

	entries, err := sink.Pending(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-a", entries[0].Payload.RequestID)
	assert.Equal(t, "upstream status 503", entries[0].Reason)
}

func TestBadgerSink_RepeatedFailuresRetained(t *testing.T) {
	sink, err := NewBadgerSink(t.TempDir(), time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-a"), "first"))
	require.NoError(t, sink.Enqueue(context.Background(), samplePayload("req-a"), "second"))

	entries, err := sink.Pending(0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBadgerSink_PendingHonorsLimit(t *testing.T) {
	sink, err := NewBadgerSink(t.TempDir(), time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, sink.Enqueue(context.Background(), samplePayload(id), "x"))
	}

	entries, err := sink.Pending(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
