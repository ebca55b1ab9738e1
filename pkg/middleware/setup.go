package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/config"
)

// SetupMiddleware applies the gateway-wide middleware stack, ordered so
// cheap rejections happen before anything expensive:
//  1. Request ID - request tracking
//  2. Echo rate limiting - first-line flood protection
//  3. Panic recovery
//  4. Security headers
//  5. Body limit - bounds untrusted request bodies
//  6. Request timeout
//  7. Request logging (optional)
//
// The origin guard and the fixed-window submission limiter are route
// middleware on /contact, not global: the health endpoint must stay
// reachable without an Origin header.
func SetupMiddleware(e *echo.Echo, cfg *config.Config, appLogger *zap.Logger) {
	e.Use(middleware.RequestID())

	if cfg.EchoRateLimit > 0 {
		e.Use(SetupEchoRateLimiter(cfg))
	}

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: cfg.RequestTimeout,
	}))

	if cfg.EnableRequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:       true,
			LogStatus:    true,
			LogMethod:    true,
			LogRemoteIP:  true,
			LogRequestID: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				appLogger.Info("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.String("remote_ip", v.RemoteIP),
					zap.String("request_id", v.RequestID),
				)
				return nil
			},
		}))
	}
}
