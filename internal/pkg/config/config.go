package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the upstream WebHub REST API.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL,     default=http://localhost:8080/api"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT, default=30s"`
}

type SessionConfig struct {
	Backend       string        `env:"CREDENTIAL_BACKEND, default=redis"`
	CredentialTTL time.Duration `env:"CREDENTIAL_TTL,     default=72h"`
	AuthTimeout   time.Duration `env:"AUTH_TIMEOUT,       default=15s"`
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL,   default=30m"`
	CookieName    string        `env:"CLIENT_COOKIE,      default=console_client"`
	CookieSecure  bool          `env:"COOKIE_SECURE,      default=false"`
}

type AuditConfig struct {
	Enabled bool `env:"AUDIT_ENABLED, default=true"`
	Workers int  `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=webhub_console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the console runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the console cannot start with.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, c.Session.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	if c.Session.CredentialTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_TTL must be > 0")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("CLIENT_COOKIE cannot be empty")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
