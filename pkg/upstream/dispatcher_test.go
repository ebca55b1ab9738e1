package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/config"
	"contact-gateway-server/pkg/deadletter"
	"contact-gateway-server/pkg/models"
)

func testPayload() *models.ValidatedPayload {
	return &models.ValidatedPayload{
		RequestID: "req-1",
		Name:      "Alice",
		Email:     "a@b.co",
		Subject:   "Hi",
		Message:   "Hello there",
		Timestamp: "2026-08-25T10:00:00Z",
	}
}

func newDispatcher(endpoint string, sink deadletter.Sink) *Dispatcher {
	cfg := &config.Config{
		ContactAPIEndpoint: endpoint,
		ContactAPIKey:      "secret-key",
		UpstreamTimeout:    2 * time.Second,
	}
	return NewDispatcher(cfg, sink, zap.NewNop())
}

func TestDispatcher_ForwardAccepted(t *testing.T) {
	var gotAuth, gotKey, gotContentType string
	var gotBody models.ValidatedPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := deadletter.NewMemorySink()
	d := newDispatcher(srv.URL, sink)

	result, err := d.Forward(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, Accepted, result)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "req-1", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Hello there", gotBody.Message)
	assert.Equal(t, 0, sink.Len())
}

func TestDispatcher_ForwardUpstreamRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := deadletter.NewMemorySink()
	d := newDispatcher(srv.URL, sink)

	result, err := d.Forward(context.Background(), testPayload())
	require.Error(t, err)
	assert.Equal(t, UpstreamRejected, result)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream status 500", entries[0].Reason)
	assert.Equal(t, "req-1", entries[0].Payload.RequestID)
}

func TestDispatcher_ForwardTransportFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	sink := deadletter.NewMemorySink()
	d := newDispatcher(srv.URL, sink)

	result, err := d.Forward(context.Background(), testPayload())
	require.Error(t, err)
	assert.Equal(t, TransportFailed, result)
	assert.Equal(t, 1, sink.Len())
}

func TestDispatcher_SinkErrorDoesNotMaskOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL, failingSink{})

	result, err := d.Forward(context.Background(), testPayload())
	require.Error(t, err)
	assert.Equal(t, UpstreamRejected, result)
}

type failingSink struct{}

func (failingSink) Enqueue(context.Context, *models.ValidatedPayload, string) error {
	return assert.AnError
}
func (failingSink) Close() error { return nil }

func TestResult_String(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "upstream_rejected", UpstreamRejected.String())
	assert.Equal(t, "transport_failed", TransportFailed.String())
}
