package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/ports"
)

// ProfileAPI implements ports.ProfileAPI against /users/profile.
type ProfileAPI struct {
	gw *Gateway
}

func NewProfileAPI(gw *Gateway) *ProfileAPI {
	return &ProfileAPI{gw: gw}
}

var _ ports.ProfileAPI = (*ProfileAPI)(nil)

// UpdateProfile sends the edited fields and returns the stored profile.
func (p *ProfileAPI) UpdateProfile(ctx context.Context, in ports.ProfileInput) (*domain.UserProfile, error) {
	var env struct {
		Data *domain.UserProfile `json:"data"`
	}
	if err := p.gw.Do(ctx, http.MethodPut, "/users/profile", in, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, errors.New("update profile: empty response")
	}
	return env.Data, nil
}
