package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/guard"
	"github.com/webhub/admin-console/internal/core/ports"
)

// AuthHandler serves the console's sign-in, sign-up and sign-out endpoints
// against the calling browser's session.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Email    string `json:"user_email" validate:"required,email"`
	Password string `json:"user_password" validate:"required"`
}

type registerRequest struct {
	FullName string `json:"user_fullname" validate:"required,max=120"`
	Email    string `json:"user_email" validate:"required,email"`
	Password string `json:"user_password" validate:"required,min=6"`
	Phone    string `json:"user_phNo" validate:"omitempty,max=32"`
	ShopName string `json:"shopName" validate:"omitempty,max=120"`
	Theme    string `json:"theme" validate:"omitempty,max=64"`
}

type authResponse struct {
	User     *domain.UserProfile `json:"user,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

type authFailure struct {
	Error string `json:"error"`
}

type logoutResponse struct {
	Redirect string `json:"redirect"`
	Notified *bool  `json:"notified,omitempty"`
}

type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	Loading       bool                `json:"loading"`
	User          *domain.UserProfile `json:"user,omitempty"`
	IsAdmin       bool                `json:"is_admin"`
	IsSuperAdmin  bool                `json:"is_super_admin"`
	Menu          []guard.MenuItem    `json:"menu"`
}

// Login signs the browser in.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  authFailure
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	client, err := ctxClient(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if client.Session.Snapshot().Loading {
		return domain.ErrAuthInProgress
	}

	res := client.Session.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, authFailure{Error: res.Error})
	}
	return c.JSON(http.StatusOK, authResponse{User: res.User, Redirect: guard.LandingPath})
}

// Register creates an account and signs the browser in.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Sign-up form"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  authFailure
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	client, err := ctxClient(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if client.Session.Snapshot().Loading {
		return domain.ErrAuthInProgress
	}

	res := client.Session.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		ShopName: req.ShopName,
		Theme:    req.Theme,
	})
	if !res.Success {
		return c.JSON(http.StatusUnprocessableEntity, authFailure{Error: res.Error})
	}
	return c.JSON(http.StatusCreated, authResponse{User: res.User, Redirect: guard.LandingPath})
}

// Logout signs the browser out. The local session is cleared before the
// response; with wait=true the response also waits for the upstream
// notification and reports whether it succeeded.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        wait  query     bool  false  "Await the upstream logout notification"
// @Success      200   {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	client, err := ctxClient(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	task := client.Session.Logout(ctx)

	resp := logoutResponse{Redirect: guard.LoginPath}
	if c.QueryParam("wait") == "true" {
		notified := true
		if err := task.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			notified = false
		}
		resp.Notified = &notified
	}
	return c.JSON(http.StatusOK, resp)
}

// Session reports the browser's current session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	client, err := ctxClient(c)
	if err != nil {
		return err
	}

	s := client.Session.Snapshot()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: s.IsAuthenticated(),
		Loading:       s.Loading,
		User:          s.User,
		IsAdmin:       domain.IsAdmin(s.User),
		IsSuperAdmin:  domain.IsSuperAdmin(s.User),
		Menu:          guard.Menu(s),
	})
}
