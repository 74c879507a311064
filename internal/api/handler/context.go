package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/api/middleware"
	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/service"
)

// ctxClient extracts the browser client injected by the Client middleware.
// Its absence means the middleware chain is misconfigured.
func ctxClient(c echo.Context) (*service.Client, error) {
	client, ok := middleware.ClientFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "client session unavailable")
	}
	return client, nil
}

// ctxSession returns the session the route guard rendered with, falling back
// to a fresh snapshot for unguarded routes.
func ctxSession(c echo.Context, client *service.Client) domain.Session {
	if s, ok := c.Get(middleware.ContextKeySession).(domain.Session); ok {
		return s
	}
	return client.Session.Snapshot()
}
