// Command console runs the WebHub admin console backend: per-browser
// sessions, role-gated console views and the authenticated gateway to the
// WebHub REST API.
//
// @title        WebHub Admin Console
// @version      1.0
// @description  Session and access control service for the WebHub admin console.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/webhub/admin-console/internal/api"
	"github.com/webhub/admin-console/internal/api/middleware"
	"github.com/webhub/admin-console/internal/core/ports"
	mongodb "github.com/webhub/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/webhub/admin-console/internal/infrastructure/db/redis"
	"github.com/webhub/admin-console/internal/infrastructure/http/handlers"
	"github.com/webhub/admin-console/internal/infrastructure/queue"
	"github.com/webhub/admin-console/internal/pkg/config"
	"github.com/webhub/admin-console/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatal().Err(err).Msg("console stopped")
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "console"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "console",
	})
	log.Info().Str("env", cfg.Env).Str("backend", cfg.Session.Backend).Msg("starting console")

	var rdb *redis.Client
	if cfg.Session.Backend == config.BackendRedis {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	var (
		db    *mongo.Database
		audit ports.AuditSink
	)
	var dispatcher *queue.AuditDispatcher
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.Audit.Enabled {
		var client *mongo.Client
		client, db, err = mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		repo := mongodb.NewAuditRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit indexes not ensured")
		}
		dispatcher = queue.NewAuditDispatcher(cfg.Audit.Workers, repo, logger.Component(log, "audit"))
		dispatcher.Start(workersCtx)
		audit = dispatcher
	}

	registry, _ := newRegistry(workersCtx, cfg, rdb, audit, log)

	e := api.NewRouter(api.RouterConfig{
		Clients:   registry,
		Readiness: handlers.NewHealthDependenciesHandler(db, rdb),
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.CredentialTTL,
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}
