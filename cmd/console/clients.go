package main

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/webhub/admin-console/internal/core/ports"
	"github.com/webhub/admin-console/internal/core/service"
	"github.com/webhub/admin-console/internal/infrastructure/apiclient"
	"github.com/webhub/admin-console/internal/infrastructure/credentials"
	redisdb "github.com/webhub/admin-console/internal/infrastructure/db/redis"
	"github.com/webhub/admin-console/internal/pkg/config"
	"github.com/webhub/admin-console/pkg/logger"
)

// newRegistry builds the session registry over the configured credential
// medium and starts its sweepers on ctx. The memory factory is nil with Redis.
func newRegistry(ctx context.Context, cfg *config.Config, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) (*service.SessionRegistry, *credentials.MemoryKVFactory) {
	kvFor, memory := credentialKVs(rdb)
	registry := service.NewSessionRegistry(
		newClientFactory(cfg, kvFor, audit, log),
		cfg.Session.IdleTTL,
		logger.Component(log, "registry"),
	)
	go registry.Run(ctx, sweepInterval)

	if memory != nil {
		registry.OnEvict(func(id string) { memory.Release(id) })
		go memory.Run(ctx, sweepInterval)
	}
	return registry, memory
}

// credentialKVs returns the per-client key-value medium: Redis when rdb is
// set, process memory otherwise.
func credentialKVs(rdb *redis.Client) (func(clientID string) ports.KeyValueStore, *credentials.MemoryKVFactory) {
	if rdb != nil {
		return func(clientID string) ports.KeyValueStore {
			return redisdb.NewKeyValueStore(rdb, clientID)
		}, nil
	}
	memory := credentials.NewMemoryKVFactory()
	return func(clientID string) ports.KeyValueStore {
		return memory.For(clientID)
	}, memory
}

// newClientFactory wires the per-browser bundle: a credential store on the
// configured medium, a gateway over it whose 401 hook reaches the registry,
// and the session service on top.
func newClientFactory(cfg *config.Config, kvFor func(clientID string) ports.KeyValueStore, audit ports.AuditSink, log zerolog.Logger) service.ClientFactory {
	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	gwLog := logger.Component(log, "gateway")
	sessLog := logger.Component(log, "session")

	return func(clientID string, onRejected func()) *service.Client {
		store := credentials.NewStore(kvFor(clientID))

		gw := apiclient.NewGateway(cfg.API.BaseURL, store,
			apiclient.WithHTTPClient(httpClient),
			apiclient.WithRejectHook(onRejected),
			apiclient.WithLogger(gwLog.With().Str("client_id", clientID).Logger()),
		)

		return &service.Client{
			Session: service.NewSessionService(clientID, store, apiclient.NewAuthAPI(gw), audit, service.SessionOptions{
				CredentialTTL: cfg.Session.CredentialTTL,
				AuthTimeout:   cfg.Session.AuthTimeout,
			}, sessLog),
			Profile: apiclient.NewProfileAPI(gw),
		}
	}
}
