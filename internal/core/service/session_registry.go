package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/webhub/admin-console/internal/api/metrics"
	"github.com/webhub/admin-console/internal/core/ports"
)

const defaultIdleTTL = 30 * time.Minute

// Client bundles what the console owns for one browser client.
type Client struct {
	ID      string
	Session ports.SessionService
	Profile ports.ProfileAPI

	lastSeen time.Time
}

// ClientFactory builds the per-client bundle. onRejected must be invoked by
// the client's outbound gateway after it cleared the credential store because
// the upstream API rejected the token.
type ClientFactory func(clientID string, onRejected func()) *Client

// SessionRegistry keeps one Client per browser client id and evicts clients
// that stayed idle longer than the idle TTL.
type SessionRegistry struct {
	factory ClientFactory
	idleTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
	onEvict func(id string)
}

// NewSessionRegistry returns an empty registry. If idleTTL <= 0, defaultIdleTTL
// is used.
func NewSessionRegistry(factory ClientFactory, idleTTL time.Duration, log zerolog.Logger) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &SessionRegistry{
		factory: factory,
		idleTTL: idleTTL,
		log:     log,
		now:     time.Now,
		clients: make(map[string]*Client),
	}
}

// OnEvict registers fn to run, under the registry lock, whenever a client
// leaves the registry. Set it before serving.
func (r *SessionRegistry) OnEvict(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Get returns the client for id, creating and initialising it on first use.
// Concurrent callers for a new id observe a loading session until Init ends.
//
// Hydration outlives the request that triggered it. If the store could not
// be read, the client serves this request anonymously and is dropped so the
// next request retries.
func (r *SessionRegistry) Get(ctx context.Context, id string) *Client {
	r.mu.Lock()
	if c, ok := r.clients[id]; ok {
		c.lastSeen = r.now()
		r.mu.Unlock()
		return c
	}

	var c *Client
	c = r.factory(id, func() { r.reject(id, c) })
	c.ID = id
	c.lastSeen = r.now()
	r.clients[id] = c
	metrics.ActiveSessions.Set(float64(len(r.clients)))
	r.mu.Unlock()

	if err := c.Session.Init(context.WithoutCancel(ctx)); err != nil {
		r.mu.Lock()
		r.removeLocked(id, c)
		r.mu.Unlock()
		r.log.Warn().Err(err).Str("client_id", id).Msg("session hydration failed, will retry")
	}
	return c
}

// Evict drops the client for id, if any.
func (r *SessionRegistry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id, nil)
}

// removeLocked drops id when it still maps to c, or unconditionally when c is
// nil. It reports whether anything was dropped.
func (r *SessionRegistry) removeLocked(id string, c *Client) bool {
	cur, ok := r.clients[id]
	if !ok || (c != nil && cur != c) {
		return false
	}
	delete(r.clients, id)
	metrics.ActiveSessions.Set(float64(len(r.clients)))
	if r.onEvict != nil {
		r.onEvict(id)
	}
	return true
}

// Len returns the number of live clients.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// reject resets the session of c and evicts it so the next request starts
// from the (now empty) store. A client already replaced under id is only
// reset; its successor stays.
func (r *SessionRegistry) reject(id string, c *Client) {
	c.Session.Reset()

	r.mu.Lock()
	evicted := r.removeLocked(id, c)
	r.mu.Unlock()

	if !evicted {
		r.log.Debug().Str("client_id", id).Msg("rejection for a replaced client")
		return
	}
	r.log.Info().Str("client_id", id).Msg("session rejected upstream, client reset")
}

// Run sweeps idle clients every interval until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		}
	}
}

func (r *SessionRegistry) sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, c := range r.clients {
		// Never drop a client while a login or register is in flight.
		if c.lastSeen.Before(cutoff) && !c.Session.Snapshot().Loading {
			r.removeLocked(id, c)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.clients)))
	return n
}
