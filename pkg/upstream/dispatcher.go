// Package upstream forwards validated submissions to the external
// messaging API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"contact-gateway-server/pkg/config"
	"contact-gateway-server/pkg/deadletter"
	"contact-gateway-server/pkg/models"
)

// Result classifies the outcome of a single forwarding attempt.
type Result int

const (
	// Accepted means the upstream API returned a success status.
	Accepted Result = iota
	// UpstreamRejected means the upstream API answered with a
	// non-success status.
	UpstreamRejected
	// TransportFailed means the request never produced a response
	// (connection failure, timeout, cancellation).
	TransportFailed
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case UpstreamRejected:
		return "upstream_rejected"
	case TransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// Dispatcher issues a single HTTP POST per accepted submission. It
// performs no retries: retry responsibility stays with the client,
// which the idempotency layer makes safe, and failed payloads go to
// the dead-letter sink.
type Dispatcher struct {
	endpoint string
	// apiKey is write-only configuration: it is set here once and only
	// ever leaves as an Authorization header on the outbound request.
	apiKey string
	client *http.Client
	sink   deadletter.Sink
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher for the configured upstream
// endpoint and credential.
func NewDispatcher(cfg *config.Config, sink deadletter.Sink, appLogger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: cfg.ContactAPIEndpoint,
		apiKey:   cfg.ContactAPIKey,
		client:   &http.Client{Timeout: cfg.UpstreamTimeout},
		sink:     sink,
		logger:   appLogger,
	}
}

// Forward POSTs the JSON-encoded payload to the upstream endpoint with
// the bearer credential and an Idempotency-Key header carrying the
// requestId as a best-effort hint to the upstream system.
func (d *Dispatcher) Forward(ctx context.Context, payload *models.ValidatedPayload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return TransportFailed, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return TransportFailed, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Idempotency-Key", payload.RequestID)

	resp, err := d.client.Do(req)
	if err != nil {
		d.enqueueFailure(ctx, payload, "transport: "+err.Error())
		return TransportFailed, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the transport can reuse the connection.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		reason := fmt.Sprintf("upstream status %d", resp.StatusCode)
		d.enqueueFailure(ctx, payload, reason)
		return UpstreamRejected, fmt.Errorf("upstream rejected submission: status %d", resp.StatusCode)
	}

	return Accepted, nil
}

func (d *Dispatcher) enqueueFailure(ctx context.Context, payload *models.ValidatedPayload, reason string) {
	if err := d.sink.Enqueue(ctx, payload, reason); err != nil {
		d.logger.Error("Failed to dead-letter payload",
			zap.String("request_id", payload.RequestID),
			zap.String("reason", reason),
			zap.Error(err))
	}
}
