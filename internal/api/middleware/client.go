package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/core/service"
)

// ContextKeyClient is the echo context key holding the *service.Client.
const ContextKeyClient = "console.client"

// ClientProvider resolves the per-browser client bundle.
type ClientProvider interface {
	Get(ctx context.Context, id string) *service.Client
}

// CookieConfig describes the browser client id cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Client identifies the browser by its client id cookie, issuing a new id when
// the cookie is missing or not a uuid, and injects its client bundle.
func Client(provider ClientProvider, cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			// Refresh the cookie so it lives as long as the credential does.
			c.SetCookie(&http.Cookie{
				Name:     cfg.Name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(ContextKeyClient, provider.Get(c.Request().Context(), id))
			return next(c)
		}
	}
}

// ClientFrom returns the client injected by Client.
func ClientFrom(c echo.Context) (*service.Client, bool) {
	client, ok := c.Get(ContextKeyClient).(*service.Client)
	return client, ok && client != nil
}
