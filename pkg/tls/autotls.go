// Package tls provides HTTPS serving for the contact gateway with
// automatic Let's Encrypt certificate management through Echo's AutoTLS
// support.
package tls

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"contact-gateway-server/pkg/config"
)

// SetupAutoTLS configures automatic certificate management on the Echo
// instance. Certificates are cached on disk to stay under Let's
// Encrypt rate limits, and issuance is restricted to the configured
// hosts.
func SetupAutoTLS(e *echo.Echo, cfg *config.Config, appLogger *zap.Logger) {
	e.AutoTLSManager.Prompt = autocert.AcceptTOS
	e.AutoTLSManager.Cache = autocert.DirCache(cfg.TLSCacheDir)

	if len(cfg.TLSHosts) > 0 {
		e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.TLSHosts...)
		appLogger.Info("AutoTLS configured",
			zap.Strings("hosts", cfg.TLSHosts),
			zap.String("cache_dir", cfg.TLSCacheDir))
	} else {
		appLogger.Warn("AutoTLS configured without host restrictions - suitable for development only",
			zap.String("cache_dir", cfg.TLSCacheDir))
	}

	if cfg.EnableHTTPSOnly {
		e.Pre(middleware.HTTPSRedirect())
		appLogger.Info("HTTPS redirect enabled - all HTTP traffic will be redirected to HTTPS")
	}
}
