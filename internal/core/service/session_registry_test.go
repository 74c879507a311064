package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/webhub/admin-console/internal/core/domain"
)

// newTestRegistry records every reject hook handed out per id, oldest first.
func newTestRegistry(stores map[string]*stubStore) (*SessionRegistry, map[string][]func()) {
	hooks := make(map[string][]func())
	r := NewSessionRegistry(func(id string, onRejected func()) *Client {
		hooks[id] = append(hooks[id], onRejected)
		store, ok := stores[id]
		if !ok {
			store = &stubStore{}
			stores[id] = store
		}
		return &Client{Session: newSessionSvc(store, &stubAuth{}, nil)}
	}, time.Minute, zerolog.Nop())
	return r, hooks
}

func TestSessionRegistry_GetInitialisesOnce(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}},
	}
	r, _ := newTestRegistry(stores)

	c1 := r.Get(context.Background(), "a")
	c2 := r.Get(context.Background(), "a")

	require.Same(t, c1, c2)
	require.Equal(t, "a", c1.ID)
	require.True(t, c1.Session.IsAuthenticated())
	require.False(t, c1.Session.Snapshot().Loading)
	require.Equal(t, 1, r.Len())
}

func TestSessionRegistry_ClientsAreIsolated(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}},
	}
	r, _ := newTestRegistry(stores)

	require.True(t, r.Get(context.Background(), "a").Session.IsAuthenticated())
	require.False(t, r.Get(context.Background(), "b").Session.IsAuthenticated())
	require.Equal(t, 2, r.Len())
}

func TestSessionRegistry_RejectionResetsAndEvicts(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}},
	}
	r, hooks := newTestRegistry(stores)

	old := r.Get(context.Background(), "a")
	// The gateway clears the store before invoking the hook.
	_ = stores["a"].Clear(context.Background())
	hooks["a"][0]()

	require.False(t, old.Session.IsAuthenticated())
	require.Equal(t, 0, r.Len())

	fresh := r.Get(context.Background(), "a")
	require.NotSame(t, old, fresh)
	require.False(t, fresh.Session.IsAuthenticated())
}

func TestSessionRegistry_StaleRejectionKeepsReplacement(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}},
	}
	r, hooks := newTestRegistry(stores)

	old := r.Get(context.Background(), "a")
	r.Evict("a")
	fresh := r.Get(context.Background(), "a")
	require.NotSame(t, old, fresh)

	// The evicted bundle's gateway reports a 401 after its successor exists.
	hooks["a"][0]()

	require.False(t, old.Session.IsAuthenticated())
	require.True(t, fresh.Session.IsAuthenticated())
	require.Same(t, fresh, r.Get(context.Background(), "a"))
	require.Zero(t, stores["a"].clears)
}

func TestSessionRegistry_HydrationFailureIsRetried(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}, readErr: errors.New("redis down")},
	}
	r, _ := newTestRegistry(stores)

	first := r.Get(context.Background(), "a")
	require.False(t, first.Session.IsAuthenticated())
	require.False(t, first.Session.Snapshot().Loading)
	require.Zero(t, r.Len())

	stores["a"].setReadErr(nil)

	second := r.Get(context.Background(), "a")
	require.NotSame(t, first, second)
	require.True(t, second.Session.IsAuthenticated())
	require.Equal(t, 1, r.Len())
}

func TestSessionRegistry_HydrationOutlivesCancelledRequest(t *testing.T) {
	stores := map[string]*stubStore{
		"a": {cred: &domain.Credential{Token: "T", User: alice}, honourCtx: true},
	}
	r, _ := newTestRegistry(stores)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := r.Get(ctx, "a")
	require.True(t, c.Session.IsAuthenticated())
	require.Same(t, c, r.Get(context.Background(), "a"))
}

func TestSessionRegistry_OnEvictSeesEveryRemoval(t *testing.T) {
	r, hooks := newTestRegistry(map[string]*stubStore{})
	now := time.Now()
	r.now = func() time.Time { return now }

	var evicted []string
	r.OnEvict(func(id string) { evicted = append(evicted, id) })

	r.Get(context.Background(), "manual")
	r.Evict("manual")

	r.Get(context.Background(), "rejected")
	hooks["rejected"][0]()

	r.Get(context.Background(), "idle")
	now = now.Add(2 * time.Minute)
	r.sweep()

	require.Equal(t, []string{"manual", "rejected", "idle"}, evicted)
}

func TestSessionRegistry_SweepEvictsIdleClients(t *testing.T) {
	r, _ := newTestRegistry(map[string]*stubStore{})
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Get(context.Background(), "idle")
	now = now.Add(2 * time.Minute)
	r.Get(context.Background(), "fresh")

	require.Equal(t, 1, r.sweep())
	require.Equal(t, 1, r.Len())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.sweep())
	require.Equal(t, 0, r.Len())
}

func TestSessionRegistry_RunStopsOnCancel(t *testing.T) {
	r, _ := newTestRegistry(map[string]*stubStore{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
