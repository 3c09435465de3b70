package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Accounts backends.
const (
	AccountsMemory = "memory"
	AccountsMongo  = "mongo"
)

const devSecret = "dev-only-insecure-secret"

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session  SessionConfig
	Accounts AccountsConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Toasts   ToastConfig
	Timers   TimerConfig
}

type SessionConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	TTL             time.Duration `env:"SESSION_TTL,           default=720h"`
	MockLatency     time.Duration `env:"MOCK_LATENCY,          default=1s"`
	VerifyPasswords bool          `env:"AUTH_VERIFY_PASSWORDS, default=false"`
	CacheSize       int           `env:"SESSION_CACHE_SIZE,    default=4096"`
	CacheTTL        time.Duration `env:"SESSION_CACHE_TTL,     default=30s"`
	SecureCookie    bool          `env:"SESSION_SECURE_COOKIE, default=false"`
}

type AccountsConfig struct {
	Backend string `env:"ACCOUNTS_BACKEND, default=memory"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=grievance_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ToastConfig struct {
	Workers int `env:"TOAST_WORKERS, default=4"`
}

type TimerConfig struct {
	SplashSteps    []time.Duration `env:"SPLASH_STEPS,    default=1s,2s,3s,4s"`
	SplashSettle   time.Duration   `env:"SPLASH_SETTLE,   default=1500ms"`
	TypingInterval time.Duration   `env:"TYPING_INTERVAL, default=40ms"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.Session.JWTSecret = devSecret
	}
	switch c.Accounts.Backend {
	case AccountsMemory, AccountsMongo:
	default:
		return fmt.Errorf("config: ACCOUNTS_BACKEND must be %q or %q, got %q", AccountsMemory, AccountsMongo, c.Accounts.Backend)
	}
	if c.Session.MockLatency < 0 {
		return errors.New("config: MOCK_LATENCY must not be negative")
	}
	if c.Timers.TypingInterval <= 0 {
		return errors.New("config: TYPING_INTERVAL must be positive")
	}
	for i, d := range c.Timers.SplashSteps {
		if d <= 0 || (i > 0 && d <= c.Timers.SplashSteps[i-1]) {
			return errors.New("config: SPLASH_STEPS must be positive and increasing")
		}
	}
	return nil
}
