package ports

import (
	"context"

	"github.com/webhub/admin-console/internal/core/domain"
)

// LoginInput carries the credentials posted to the authentication endpoint.
type LoginInput struct {
	Email    string `json:"user_email"`
	Password string `json:"user_password"`
}

// RegisterInput carries the sign-up form posted to the authentication endpoint.
type RegisterInput struct {
	FullName string `json:"user_fullname"`
	Email    string `json:"user_email"`
	Password string `json:"user_password"`
	Phone    string `json:"user_phNo,omitempty"`
	ShopName string `json:"shopName,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// AuthGrant is a successful authentication response.
type AuthGrant struct {
	Token string
	User  *domain.UserProfile
}

// AuthGateway talks to the external authentication endpoint.
type AuthGateway interface {
	Login(ctx context.Context, in LoginInput) (*AuthGrant, error)
	Register(ctx context.Context, in RegisterInput) (*AuthGrant, error)
	// Logout tells the API that token is no longer in use.
	Logout(ctx context.Context, token string) error
}

// ProfileAPI updates the signed-in user's profile upstream.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, in ProfileInput) (*domain.UserProfile, error)
}

// ProfileInput is the editable subset of a user profile.
type ProfileInput struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}
