package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webhub/admin-console/internal/core/ports"
)

// ProfileHandler updates the signed-in user's profile upstream and keeps the
// console session in step with the result.
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

type profileRequest struct {
	FullName string `json:"fullName" validate:"omitempty,max=120"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

// Update
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Editable profile fields"
// @Success      200   {object}  domain.UserProfile
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	client, err := ctxClient(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	user, err := client.Profile.UpdateProfile(ctx, ports.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if err := client.Session.UpdateProfile(ctx, user); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return c.JSON(http.StatusOK, user)
}
