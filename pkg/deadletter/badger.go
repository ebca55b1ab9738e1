package deadletter

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/models"
)

const keyPrefix = "deadletter/"

// BadgerSink persists undeliverable payloads in a local Badger
// database. Entries carry a TTL so the database does not grow without
// bound if nobody reprocesses them.
type BadgerSink struct {
	db     *badger.DB
	ttl    time.Duration
	logger *zap.Logger
}

var _ Sink = (*BadgerSink)(nil)

// NewBadgerSink opens (or creates) the dead-letter database in dir.
func NewBadgerSink(dir string, ttl time.Duration, appLogger *zap.Logger) (*BadgerSink, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir)).
		WithLogger(nil).
		// Durability matters more than throughput here: a dead-lettered
		// payload is the last copy of the message.
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open dead-letter database: %w", err)
	}

	return &BadgerSink{db: db, ttl: ttl, logger: appLogger}, nil
}

// Enqueue stores the failed payload under a key derived from the
// requestId and the enqueue time, so repeated failures of the same
// requestId are all retained.
func (s *BadgerSink) Enqueue(_ context.Context, payload *models.ValidatedPayload, reason string) error {
	entry := FailedSubmission{
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode dead-letter entry: %w", err)
	}

	key := []byte(keyPrefix + payload.RequestID + "/" + strconv.FormatInt(entry.FailedAt.UnixNano(), 10))

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("failed to persist dead-letter entry: %w", err)
	}

	s.logger.Warn("Payload dead-lettered",
		zap.String("request_id", payload.RequestID),
		zap.String("reason", reason))
	return nil
}

// Pending returns up to limit stored entries, oldest key order, for
// offline reprocessing.
func (s *BadgerSink) Pending(limit int) ([]FailedSubmission, error) {
	var out []FailedSubmission

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var entry FailedSubmission
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("failed to decode dead-letter entry: %w", err)
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerSink) Close() error {
	return s.db.Close()
}
