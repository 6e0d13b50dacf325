package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every field carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv         = "STOREFRONT_APP_ENV"
	EnvLogLevel       = "STOREFRONT_LOG_LEVEL"
	EnvGatewayBaseURL = "STOREFRONT_GATEWAY_BASE_URL"
	EnvGuestDriver    = "STOREFRONT_GUEST_STORE_DRIVER"
	EnvDBPath         = "STOREFRONT_DB_PATH"
	EnvRedisURL       = "STOREFRONT_REDIS_URL"
	EnvJWTSecret      = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer      = "STOREFRONT_JWT_ISSUER"
)

const (
	GuestDriverSQLite = "sqlite"
	GuestDriverRedis  = "redis"
)

type Config struct {
	App        AppConfig
	Gateway    GatewayConfig
	GuestStore GuestStoreConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.GuestStore.validate(); err != nil {
		return nil, err
	}
	if cfg.GuestStore.IsRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s or STOREFRONT_REDIS_ADDR is required for the redis guest store", EnvRedisURL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GatewayConfig points the cart gateway client at the remote backend.
type GatewayConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_GATEWAY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_GATEWAY_TIMEOUT" default:"10s"`
}

// GuestStoreConfig selects the durable local storage backing guest carts.
type GuestStoreConfig struct {
	Driver    string `envconfig:"STOREFRONT_GUEST_STORE_DRIVER" default:"sqlite"`
	SessionID string `envconfig:"STOREFRONT_GUEST_SESSION_ID"`
}

func (g GuestStoreConfig) IsRedis() bool {
	return strings.EqualFold(g.Driver, GuestDriverRedis)
}

func (g GuestStoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(g.Driver)) {
	case GuestDriverSQLite, GuestDriverRedis:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvGuestDriver, GuestDriverSQLite, GuestDriverRedis)
	}
}

// DBConfig configures the embedded sqlite database used for local persistence.
type DBConfig struct {
	Path            string        `envconfig:"STOREFRONT_DB_PATH" default:"storefront.db"`
	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig validates the session tokens handed to the auth provider.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
}
