// Package store holds the gateway's best-effort shared state: the
// idempotency records that make client retries safe. State is
// per-process and advisory; it is not durable and not coordinated
// across instances.
package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// StatusAccepted marks a requestId whose payload the upstream API
// confirmed. It is currently the only terminal status recorded.
const StatusAccepted = "accepted"

// Record is the remembered outcome for a requestId.
type Record struct {
	Status string `json:"status"`
}

// Store is a small TTL key-value abstraction so the idempotency
// contract can be backed by an in-process cache or an external
// low-latency store without changing the handler.
type Store interface {
	// Get returns the record for key, reporting absence for unknown
	// and expired keys alike.
	Get(key string) (Record, bool)
	// Set stores a record unconditionally (last write wins). The
	// handler only calls it after a Get miss, so in practice each key
	// is written at most once within its TTL.
	Set(key string, rec Record)
	Delete(key string)
	Len() int
}

// IdempotencyStore remembers recently accepted requestIds behind an
// expirable LRU. Entries expire after the configured TTL and the cache
// is capacity-bounded, so memory stays bounded even under sustained
// unique-requestId traffic.
type IdempotencyStore struct {
	cache *expirable.LRU[string, Record]
}

var _ Store = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store holding at most maxEntries
// records, each expiring ttl after it was written.
func NewIdempotencyStore(maxEntries int, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		cache: expirable.NewLRU[string, Record](maxEntries, nil, ttl),
	}
}

func (s *IdempotencyStore) Get(key string) (Record, bool) {
	return s.cache.Get(key)
}

func (s *IdempotencyStore) Set(key string, rec Record) {
	s.cache.Add(key, rec)
}

func (s *IdempotencyStore) Delete(key string) {
	s.cache.Remove(key)
}

// Len reports the number of live records, for health metrics.
func (s *IdempotencyStore) Len() int {
	return s.cache.Len()
}
