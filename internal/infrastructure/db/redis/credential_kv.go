package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "console"

// KeyValueStore is a ports.KeyValueStore scoped to one browser client.
// Key format: console:<client_id>:<key>
type KeyValueStore struct {
	client   *redis.Client
	clientID string
}

// NewKeyValueStore returns a store for clientID backed by client.
func NewKeyValueStore(client *redis.Client, clientID string) *KeyValueStore {
	return &KeyValueStore{client: client, clientID: clientID}
}

// Get returns the value of key; ok is false when it is absent or expired.
func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// SetMany writes all entries in one MULTI/EXEC with the same expiry.
func (s *KeyValueStore) SetMany(ctx context.Context, entries map[string]string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.key(k), v, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes keys; missing keys are ignored.
func (s *KeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *KeyValueStore) key(k string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.clientID, k)
}
