package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_SetGet(t *testing.T) {
	s := NewIdempotencyStore(10, time.Minute)

	_, found := s.Get("req-1")
	assert.False(t, found)

	s.Set("req-1", Record{Status: StatusAccepted})

	rec, found := s.Get("req-1")
	require.True(t, found)
	assert.Equal(t, StatusAccepted, rec.Status)
	assert.Equal(t, 1, s.Len())
}

func TestIdempotencyStore_ExpiredTreatedAsAbsent(t *testing.T) {
	s := NewIdempotencyStore(10, 30*time.Millisecond)

	s.Set("req-1", Record{Status: StatusAccepted})
	_, found := s.Get("req-1")
	require.True(t, found)

	time.Sleep(60 * time.Millisecond)

	_, found = s.Get("req-1")
	assert.False(t, found)
}

func TestIdempotencyStore_CapacityBounded(t *testing.T) {
	s := NewIdempotencyStore(2, time.Minute)

	s.Set("a", Record{Status: StatusAccepted})
	s.Set("b", Record{Status: StatusAccepted})
	s.Set("c", Record{Status: StatusAccepted})

	assert.LessOrEqual(t, s.Len(), 2)
	// Oldest entry evicted first.
	_, found := s.Get("a")
	assert.False(t, found)
	_, found = s.Get("c")
	assert.True(t, found)
}

func TestIdempotencyStore_Delete(t *testing.T) {
	s := NewIdempotencyStore(10, time.Minute)

	s.Set("req-1", Record{Status: StatusAccepted})
	s.Delete("req-1")

	_, found := s.Get("req-1")
	assert.False(t, found)
}
