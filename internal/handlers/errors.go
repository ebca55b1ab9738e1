package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"contact-gateway-server/pkg/models"
)

// NewHTTPErrorHandler returns an Echo error handler that renders every
// router- or middleware-generated error in the gateway's {"error": ...}
// envelope, with the fixed wordings for unknown paths and methods.
func NewHTTPErrorHandler(appLogger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error."

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			switch code {
			case http.StatusNotFound:
				message = "Not found."
			case http.StatusMethodNotAllowed:
				message = "Method not allowed."
			case http.StatusTooManyRequests:
				message = "Rate limit exceeded."
			case http.StatusRequestEntityTooLarge:
				message = "Request body too large."
			default:
				if s, ok := he.Message.(string); ok {
					message = s
				}
			}
		}

		if code >= http.StatusInternalServerError {
			appLogger.Error("Request failed", zap.Int("status", code), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, models.ErrorResponse{Error: message})
		}
		if err != nil {
			appLogger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
