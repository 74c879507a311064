// Package credentials persists a client's bearer token and user profile
// snapshot on a key/value medium with per-entry expiry.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/ports"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// Store implements ports.CredentialStore on top of a ports.KeyValueStore.
// The token is stored in plaintext; the medium is the trust boundary.
type Store struct {
	kv  ports.KeyValueStore
	now func() time.Time
}

// NewStore wraps kv.
func NewStore(kv ports.KeyValueStore) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Write stores token and user together. When the token is a JWT expiring
// before ttl, the entries expire with the token instead.
func (s *Store) Write(ctx context.Context, token string, user *domain.UserProfile, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	ttl = s.clipTTL(token, ttl)
	if err := s.kv.SetMany(ctx, map[string]string{keyToken: token, keyUser: string(raw)}, ttl); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// WriteUser rewrites the user entry only.
func (s *Store) WriteUser(ctx context.Context, user *domain.UserProfile, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{keyUser: string(raw)}, ttl); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

// Read returns the stored pair. Both entries must be present.
func (s *Store) Read(ctx context.Context) (*domain.Credential, error) {
	token, ok, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return nil, domain.ErrCredentialNotFound
	}

	raw, ok, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if !ok || raw == "" {
		return nil, domain.ErrCredentialNotFound
	}

	var user domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedCredential, err)
	}
	return &domain.Credential{Token: token, User: &user}, nil
}

// Token returns the stored token, or "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// Clear removes both entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyToken, keyUser); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// clipTTL shortens ttl to the token's exp claim. Opaque tokens, tokens
// without exp and already expired tokens keep ttl.
func (s *Store) clipTTL(token string, ttl time.Duration) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ttl
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ttl
	}
	if left := exp.Sub(s.now()); left > 0 && left < ttl {
		return left
	}
	return ttl
}
