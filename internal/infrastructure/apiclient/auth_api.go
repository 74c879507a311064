package apiclient

import (
	"context"
	"net/http"

	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/ports"
)

type authEnvelope struct {
	Data struct {
		Token string              `json:"token"`
		User  *domain.UserProfile `json:"user"`
	} `json:"data"`
}

// AuthAPI implements ports.AuthGateway against /auth/*.
type AuthAPI struct {
	gw *Gateway
}

// NewAuthAPI returns an AuthAPI sending through gw.
func NewAuthAPI(gw *Gateway) *AuthAPI {
	return &AuthAPI{gw: gw}
}

var _ ports.AuthGateway = (*AuthAPI)(nil)

func (a *AuthAPI) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthGrant, error) {
	return a.authenticate(ctx, "/auth/login", in)
}

func (a *AuthAPI) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthGrant, error) {
	return a.authenticate(ctx, "/auth/register", in)
}

// Logout tells the upstream API the session ended. The token is passed in
// because the store was already cleared by the time the notification runs.
func (a *AuthAPI) Logout(ctx context.Context, token string) error {
	return a.gw.sendAs(ctx, token, http.MethodPost, "/auth/logout", nil, nil, false)
}

func (a *AuthAPI) authenticate(ctx context.Context, path string, payload any) (*ports.AuthGrant, error) {
	var env authEnvelope
	if err := a.gw.send(ctx, http.MethodPost, path, payload, &env, false); err != nil {
		return nil, err
	}
	return &ports.AuthGrant{Token: env.Data.Token, User: env.Data.User}, nil
}
