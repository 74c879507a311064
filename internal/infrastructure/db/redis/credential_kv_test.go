package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestKeyValueStore_SetGetDelete(t *testing.T) {
	mr, rdb := newMiniredis(t)
	kv := NewKeyValueStore(rdb, "c1")
	ctx := context.Background()

	require.NoError(t, kv.SetMany(ctx, map[string]string{"token": "T", "user": `{"_id":"u1"}`}, time.Hour))
	require.True(t, mr.Exists("console:c1:token"))
	require.Equal(t, time.Hour, mr.TTL("console:c1:user"))

	v, ok, err := kv.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "T", v)

	require.NoError(t, kv.Delete(ctx, "token", "user"))
	_, ok, err = kv.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyValueStore_Expiry(t *testing.T) {
	mr, rdb := newMiniredis(t)
	kv := NewKeyValueStore(rdb, "c1")
	ctx := context.Background()

	require.NoError(t, kv.SetMany(ctx, map[string]string{"token": "T"}, time.Minute))
	mr.FastForward(time.Minute)

	_, ok, err := kv.Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyValueStore_ClientsAreNamespaced(t *testing.T) {
	_, rdb := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, NewKeyValueStore(rdb, "a").SetMany(ctx, map[string]string{"token": "A"}, time.Hour))

	_, ok, err := NewKeyValueStore(rdb, "b").Get(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConnect_PingFailure(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
}

func TestConnect_OK(t *testing.T) {
	mr, _ := newMiniredis(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
