package ports

import (
	"context"
	"time"

	"github.com/webhub/admin-console/internal/core/domain"
)

// KeyValueStore is the client-persisted medium behind the credential store.
// Entries expire on their own once their TTL elapses; an expired entry reads
// as absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all entries atomically with the same TTL.
	SetMany(ctx context.Context, entries map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CredentialStore persists the bearer token and the user profile snapshot.
type CredentialStore interface {
	Write(ctx context.Context, token string, user *domain.UserProfile, ttl time.Duration) error
	// WriteUser rewrites the user entry only; the token is left as is.
	WriteUser(ctx context.Context, user *domain.UserProfile, ttl time.Duration) error
	// Read returns domain.ErrCredentialNotFound when either entry is absent and
	// domain.ErrMalformedCredential when the user entry cannot be decoded.
	Read(ctx context.Context) (*domain.Credential, error)
	// Token returns the stored token, or "" when there is none.
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
