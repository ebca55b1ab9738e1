package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/config"
	custommiddleware "contact-gateway-server/pkg/middleware"
)

// NewRouter assembles the Echo router: global middleware stack, error
// envelope, health endpoint, and the /contact routes behind the origin
// guard and the fixed-window limiter, in that order. Rate limiting
// deliberately precedes body parsing, so an invalid POST still
// consumes a rate-limit slot.
func NewRouter(
	cfg *config.Config,
	contactHandler *ContactHandler,
	healthHandler *HealthHandler,
	guard *custommiddleware.OriginGuard,
	limiter *custommiddleware.FixedWindowLimiter,
	appLogger *zap.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(appLogger)

	custommiddleware.SetupMiddleware(e, cfg, appLogger)

	e.GET("/health", healthHandler.HealthCheck)

	submission := []echo.MiddlewareFunc{guard.Middleware(), limiter.Middleware()}
	e.POST("/contact", contactHandler.Submit, submission...)
	e.OPTIONS("/contact", contactHandler.Preflight, submission...)

	return e
}
