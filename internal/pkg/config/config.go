package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS"`

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	TTL            time.Duration `env:"SESSION_TTL,     default=168h"`
	BcryptCost     int           `env:"BCRYPT_COST,     default=10"`
	CookieName     string        `env:"COOKIE_NAME,     default=notes_session"`
	CookieSecure   bool          `env:"COOKIE_SECURE,   default=true"`
	CookieSameSite string        `env:"COOKIE_SAMESITE, default=none"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=notes"`
}

type RedisConfig struct {
	// Addr may be empty: the profile cache is optional.
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB, default=0"`
	Password string        `env:"REDIS_PASSWORD"`
	CacheTTL time.Duration `env:"PROFILE_CACHE_TTL, default=5m"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs, optional .env file).
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through an arbitrary lookuper, which lets tests
// supply a fixed environment.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	switch strings.ToLower(c.Session.CookieSameSite) {
	case "none":
		// Browsers drop SameSite=None cookies that are not Secure.
		if !c.Session.CookieSecure {
			return errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
		}
	case "lax", "strict":
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be none, lax or strict, got %q", c.Session.CookieSameSite)
	}
	return nil
}
