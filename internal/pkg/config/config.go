package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Identity IdentityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	Audit    AuditConfig
}

// SessionConfig drives the session token issuer. The signing key is derived
// from JWTSecret, never used raw.
type SessionConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TTL       time.Duration `env:"SESSION_TTL,        default=24h"`
	Issuer    string        `env:"SESSION_ISSUER,     default=matrimony-api"`
	RateLimit float64       `env:"SESSION_RATE_LIMIT, default=5"`
}

// IdentityConfig describes the trusted identity provider. At least one of
// HMACSecret or PublicKeysFile must be set.
type IdentityConfig struct {
	Issuer         string `env:"IDP_ISSUER"`
	Audience       string `env:"IDP_AUDIENCE"`
	HMACSecret     string `env:"IDP_HMAC_SECRET"`
	PublicKeysFile string `env:"IDP_PUBLIC_KEYS_FILE"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=matrimony"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	RoleTTL  time.Duration `env:"ROLE_CACHE_TTL, default=5m"`
}

type PaymentConfig struct {
	ContactRequestPrice int64  `env:"CONTACT_REQUEST_PRICE, default=50000"`
	Currency            string `env:"PAYMENT_CURRENCY,      default=BDT"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start safely with.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Identity.HMACSecret == "" && c.Identity.PublicKeysFile == "" {
		errs = append(errs, errors.New("one of IDP_HMAC_SECRET or IDP_PUBLIC_KEYS_FILE is required"))
	}
	if c.Payment.ContactRequestPrice <= 0 {
		errs = append(errs, errors.New("CONTACT_REQUEST_PRICE must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether ENV selects production behaviour (JSON logs,
// no swagger UI).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
