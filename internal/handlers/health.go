package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/middleware"
	"contact-gateway-server/pkg/models"
	"contact-gateway-server/pkg/store"
)

// HealthHandler reports process liveness and gateway counters.
type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	limiter   *middleware.FixedWindowLimiter
	store     store.Store
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(appLogger *zap.Logger, limiter *middleware.FixedWindowLimiter, st store.Store) *HealthHandler {
	return &HealthHandler{
		logger:    appLogger,
		startTime: time.Now(),
		limiter:   limiter,
		store:     st,
	}
}

// HealthCheck handles GET /health. Publicly accessible: it bypasses
// the origin guard so probes without an Origin header succeed.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	metrics := map[string]interface{}{
		"idempotency_entries": h.store.Len(),
	}
	for k, v := range h.limiter.GetStats() {
		metrics["rate_"+k] = v
	}

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Metrics:   metrics,
	})
}
