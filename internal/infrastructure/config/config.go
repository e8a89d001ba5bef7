package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	// JWTSecret verifies bearer tokens minted by the external auth system for
	// the credentials admin surface. This service never issues tokens.
	JWTSecret string `env:"JWT_SECRET"`

	Upstream UpstreamConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// UpstreamConfig covers both provider API versions plus the shared limits.
type UpstreamConfig struct {
	BaseURLV1 string `env:"UPSTREAM_BASE_URL_V1, default=https://api.shipmenttracking.io/v1.2"`
	BaseURLV2 string `env:"UPSTREAM_BASE_URL_V2, default=https://api.shipmenttracking.io/v2.0"`

	// Sandbox secrets serve scopes with no configured credential (demo mode).
	SandboxSecretV1 string        `env:"UPSTREAM_SANDBOX_SECRET_V1"`
	SandboxSecretV2 string        `env:"UPSTREAM_SANDBOX_SECRET_V2"`
	Timeout         time.Duration `env:"UPSTREAM_TIMEOUT,     default=30s"`
	CredentialTTL   time.Duration `env:"CREDENTIAL_CACHE_TTL, default=300s"`
	StoreWorkers    int           `env:"STORE_WORKERS,        default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tracking_gateway"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
