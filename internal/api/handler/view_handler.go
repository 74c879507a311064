package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/guard"
)

// ViewHandler renders the envelope of a guarded console view. Screen content
// is served by the frontend; the console only vouches for the viewer.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

type viewer struct {
	ID       string      `json:"id"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Shops    []string    `json:"shops,omitempty"`
}

type viewResponse struct {
	View         string           `json:"view"`
	Viewer       viewer           `json:"viewer"`
	IsAdmin      bool             `json:"is_admin"`
	IsSuperAdmin bool             `json:"is_super_admin"`
	Menu         []guard.MenuItem `json:"menu"`
}

type guestViewResponse struct {
	View          string `json:"view"`
	Authenticated bool   `json:"authenticated"`
}

// Render returns a handler for the named view. It must sit behind RouteGuard.
func (h *ViewHandler) Render(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, err := ctxClient(c)
		if err != nil {
			return err
		}

		s := ctxSession(c, client)
		u := s.User
		if u == nil {
			return domain.ErrNotAuthenticated
		}

		shops := make([]string, 0, len(u.Shops))
		for _, s := range u.Shops {
			shops = append(shops, s.ID)
		}

		return c.JSON(http.StatusOK, viewResponse{
			View: view,
			Viewer: viewer{
				ID:       u.ID,
				FullName: u.FullName,
				Email:    u.Email,
				Role:     u.Role,
				Shops:    shops,
			},
			IsAdmin:      domain.IsAdmin(u),
			IsSuperAdmin: domain.IsSuperAdmin(u),
			Menu:         guard.Menu(s),
		})
	}
}

// RenderGuest returns a handler for a view open to anonymous visitors, such
// as the landing or login page.
func (h *ViewHandler) RenderGuest(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, err := ctxClient(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, guestViewResponse{
			View:          view,
			Authenticated: ctxSession(c, client).IsAuthenticated(),
		})
	}
}
