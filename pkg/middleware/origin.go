package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/models"
)

const allowedMethods = "POST, OPTIONS"
const allowedHeaders = "Content-Type"

// OriginGuard decides whether a request's declared Origin is permitted
// to call the gateway. Matching is exact: no wildcards, no subdomain
// logic, and a request without an Origin header is never allowed.
type OriginGuard struct {
	allowed     map[string]bool
	appLogger   *zap.Logger
	logDenials  bool
	publicPaths map[string]bool // health endpoints bypass the guard
}

// NewOriginGuard builds a guard from the configured allow-list. Entries
// are trimmed and empty entries discarded.
func NewOriginGuard(allowedOrigins []string, logDenials bool, appLogger *zap.Logger) *OriginGuard {
	guard := &OriginGuard{
		allowed:    make(map[string]bool, len(allowedOrigins)),
		appLogger:  appLogger,
		logDenials: logDenials,
		publicPaths: map[string]bool{
			"/health": true,
		},
	}

	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		guard.allowed[origin] = true
	}

	return guard
}

// IsAllowed reports whether origin is on the allow-list. The empty
// string (absent header) is always denied.
func (g *OriginGuard) IsAllowed(origin string) bool {
	return origin != "" && g.allowed[origin]
}

// setCORSHeaders echoes the request origin back, plus the fixed method
// and header allowances. Only called for origins that passed the allow
// check. Vary: Origin is required because the allow-list makes the
// response origin-dependent and shared caches must not conflate
// origins.
func setCORSHeaders(c echo.Context, origin string) {
	h := c.Response().Header()
	h.Set(echo.HeaderAccessControlAllowOrigin, origin)
	h.Set(echo.HeaderAccessControlAllowMethods, allowedMethods)
	h.Set(echo.HeaderAccessControlAllowHeaders, allowedHeaders)
	h.Add(echo.HeaderVary, "Origin")
}

// Middleware returns an Echo middleware that rejects disallowed origins
// with 403 and no CORS headers, attaches CORS headers for allowed ones,
// and answers allowed preflight requests with 204 directly.
func (g *OriginGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.publicPaths[c.Request().URL.Path] {
				return next(c)
			}

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if !g.IsAllowed(origin) {
				if g.logDenials {
					g.appLogger.Warn("Origin rejected",
						zap.String("origin", origin),
						zap.String("ip", c.RealIP()),
						zap.String("path", c.Request().URL.Path))
				}
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Origin not allowed."})
			}

			setCORSHeaders(c, origin)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
