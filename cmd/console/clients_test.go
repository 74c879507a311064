package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/webhub/admin-console/internal/core/ports"
	"github.com/webhub/admin-console/internal/pkg/config"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_, _ = w.Write([]byte(`{"data":{"token":"T","user":{"_id":"u1","role":"admin"}}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{BaseURL: baseURL, Timeout: time.Second},
		Session: config.SessionConfig{
			CredentialTTL: time.Hour,
			AuthTimeout:   time.Second,
		},
	}
}

func memoryKVs() func(string) ports.KeyValueStore {
	kvFor, _ := credentialKVs(nil)
	return kvFor
}

func TestClientFactory_MemoryBackendIsolatesClients(t *testing.T) {
	factory := newClientFactory(testConfig(upstream(t).URL), memoryKVs(), nil, zerolog.Nop())
	ctx := context.Background()

	a := factory("a", func() {})
	b := factory("b", func() {})
	a.Session.Init(ctx)
	b.Session.Init(ctx)

	res := a.Session.Login(ctx, ports.LoginInput{Email: "x@y.io", Password: "p"})
	require.True(t, res.Success)

	// A fresh bundle for the same id sees the persisted credential.
	again := factory("a", func() {})
	again.Session.Init(ctx)
	require.True(t, again.Session.IsAdmin())

	b2 := factory("b", func() {})
	b2.Session.Init(ctx)
	require.False(t, b2.Session.IsAuthenticated())
}

func TestClientFactory_RedisBackendAndRejectHook(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	kvFor, memory := credentialKVs(rdb)
	require.Nil(t, memory)
	factory := newClientFactory(testConfig(upstream(t).URL), kvFor, nil, zerolog.Nop())
	ctx := context.Background()

	rejected := false
	c := factory("c1", func() { rejected = true })
	c.Session.Init(ctx)
	require.True(t, c.Session.Login(ctx, ports.LoginInput{Email: "x@y.io", Password: "p"}).Success)
	require.True(t, mr.Exists("console:c1:token"))

	_, err := c.Profile.UpdateProfile(ctx, ports.ProfileInput{FullName: "X"})
	require.Error(t, err)
	require.True(t, rejected)
	require.False(t, mr.Exists("console:c1:token"))
}

func TestNewRegistry_MemoryBackendReleasesEvictedClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	registry, memory := newRegistry(ctx, testConfig(upstream(t).URL), nil, nil, zerolog.Nop())
	require.NotNil(t, memory)

	registry.Get(ctx, "anon")
	signedIn := registry.Get(ctx, "signed-in")
	require.True(t, signedIn.Session.Login(ctx, ports.LoginInput{Email: "x@y.io", Password: "p"}).Success)
	require.Equal(t, 2, memory.Len())

	registry.Evict("anon")
	registry.Evict("signed-in")

	// Only the KV still holding a live credential survives.
	require.Equal(t, 1, memory.Len())
	require.True(t, registry.Get(ctx, "signed-in").Session.IsAuthenticated())
}
