package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/config"
	"contact-gateway-server/pkg/models"
	"contact-gateway-server/pkg/store"
	"contact-gateway-server/pkg/upstream"
)

// Forwarder is the dispatcher capability the handler depends on.
type Forwarder interface {
	Forward(ctx context.Context, payload *models.ValidatedPayload) (upstream.Result, error)
}

// ContactHandler orchestrates one submission end to end: parse,
// validate, idempotency lookup, dispatch, idempotency write, respond.
// Origin gating and rate limiting have already run in the middleware
// chain by the time Submit executes.
type ContactHandler struct {
	cfg        *config.Config
	logger     *zap.Logger
	validator  *SubmissionValidator
	store      store.Store
	dispatcher Forwarder
}

// NewContactHandler creates a contact handler.
func NewContactHandler(cfg *config.Config, appLogger *zap.Logger, st store.Store, dispatcher Forwarder) *ContactHandler {
	return &ContactHandler{
		cfg:        cfg,
		logger:     appLogger,
		validator:  NewSubmissionValidator(),
		store:      st,
		dispatcher: dispatcher,
	}
}

// logValidationError logs validation errors only if validation logging is enabled
func (h *ContactHandler) logValidationError(msg string, fields ...zap.Field) {
	if h.cfg.EnableValidationLogging {
		h.logger.Warn(msg, fields...)
	}
}

// logError logs errors only if error logging is enabled
func (h *ContactHandler) logError(msg string, fields ...zap.Field) {
	if h.cfg.EnableErrorLogging {
		h.logger.Error(msg, fields...)
	}
}

// Submit handles POST /contact.
//
// Failure at any stage ends processing immediately with the mapped
// response; nothing is retried within a request. The idempotency
// record is only written after the upstream confirms acceptance, so an
// aborted request never leaves partial state behind.
func (h *ContactHandler) Submit(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON."})
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON."})
	}

	payload, err := h.validator.ValidateSubmission(raw)
	if err != nil {
		h.logValidationError("Submission rejected",
			zap.String("ip", c.RealIP()), zap.Error(err))
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	}

	// Replays within the TTL return the prior outcome instead of
	// re-forwarding. The client must preserve requestId across retries
	// for this to hold.
	if _, ok := h.store.Get(payload.RequestID); ok {
		return c.JSON(http.StatusOK, models.SubmissionResponse{
			OK:        true,
			Status:    "duplicate",
			RequestID: payload.RequestID,
		})
	}

	result, err := h.dispatcher.Forward(c.Request().Context(), payload)
	if result != upstream.Accepted {
		h.logError("Upstream delivery failed",
			zap.String("request_id", payload.RequestID),
			zap.String("result", result.String()),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "Failed to forward message.",
			Retryable: true,
		})
	}

	h.store.Set(payload.RequestID, store.Record{Status: store.StatusAccepted})

	return c.JSON(http.StatusOK, models.SubmissionResponse{
		OK:        true,
		Status:    "accepted",
		RequestID: payload.RequestID,
	})
}

// Preflight handles OPTIONS /contact. The origin guard answers allowed
// preflights directly, so this only exists to register the route.
func (h *ContactHandler) Preflight(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
