package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/api/metrics"
	"github.com/webhub/admin-console/internal/core/guard"
)

// ContextKeySession is the echo context key holding the domain.Session the
// guard rendered with.
const ContextKeySession = "console.session"

type guardResponse struct {
	Status   string `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// RouteGuard gates a console view on the requirements in req. Browsers are
// redirected; JSON clients get 401/403 with the redirect target. A session
// that is still loading gets a 503 placeholder asking to retry.
func RouteGuard(req guard.Requirements) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client, ok := ClientFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "client session unavailable")
			}

			session := client.Session.Snapshot()
			d := guard.Decide(session, req)
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()

			switch d.Outcome {
			case guard.OutcomeLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, guardResponse{Status: "loading"})
			case guard.OutcomeRedirect:
				return Navigate(c, d.Target, d.Reason)
			}

			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

// Navigate sends the client to target: a 302 for browser navigation, or a
// JSON body carrying the target for API callers.
func Navigate(c echo.Context, target, reason string) error {
	if !WantsJSON(c) {
		return c.Redirect(http.StatusFound, target)
	}
	status := http.StatusForbidden
	if target == guard.LoginPath {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, guardResponse{Error: reason, Redirect: target})
}

// WantsJSON reports whether the caller is an API client rather than a
// navigating browser.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	accept := req.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
