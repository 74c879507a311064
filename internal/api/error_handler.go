package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/webhub/admin-console/internal/api/middleware"
	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/guard"
	"github.com/webhub/admin-console/internal/infrastructure/apiclient"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends the browser back to the login page when the session is gone.
//   - Maps the remaining domain and upstream errors to status codes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrSessionRejected) || errors.Is(err, domain.ErrNotAuthenticated) {
			if nerr := middleware.Navigate(c, guard.LoginPath, "session_expired"); nerr != nil {
				log.Error().Err(nerr).Msg("navigate to login")
			}
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if errors.Is(err, domain.ErrAuthInProgress) {
		return http.StatusConflict, "authentication already in progress"
	}

	// Upstream refusals keep their status and message.
	var ae *apiclient.APIError
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("upstream failure")
			return http.StatusBadGateway, "upstream unavailable"
		}
		if msg := ae.UserMessage(); msg != "" {
			return ae.Status, msg
		}
		return ae.Status, http.StatusText(ae.Status)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
