package ports

import (
	"context"

	"github.com/webhub/admin-console/internal/core/domain"
)

// AuthResult is the outcome of a login or register call. Authentication
// failures are reported here rather than as errors.
type AuthResult struct {
	Success bool
	User    *domain.UserProfile
	Error   string
}

// LogoutWaiter lets a caller optionally await the upstream logout notification.
type LogoutWaiter interface {
	Wait(ctx context.Context) error
}

// SessionService owns the in-memory session of one client.
type SessionService interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, in LoginInput) AuthResult
	Register(ctx context.Context, in RegisterInput) AuthResult
	Logout(ctx context.Context) LogoutWaiter
	UpdateProfile(ctx context.Context, user *domain.UserProfile) error
	Reset()
	Snapshot() domain.Session
	IsAuthenticated() bool
	IsAdmin() bool
	IsSuperAdmin() bool
}
