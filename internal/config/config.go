package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AuthModeSupabase = "supabase"
	AuthModeJWT      = "jwt"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"InvoiceAI"`
		Version string `envconfig:"APP_VERSION" default:"0.1.0"`
		Port    int    `envconfig:"PORT" default:"8000"`
		Debug   bool   `envconfig:"DEBUG" default:"false"`
	}

	DB struct {
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoiceai"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5174,http://localhost:3000"`
	}

	Auth struct {
		Mode             string        `envconfig:"AUTH_MODE" default:"supabase"`
		SupabaseURL      string        `envconfig:"SUPABASE_URL"`
		SupabaseAnonKey  string        `envconfig:"SUPABASE_ANON_KEY"`
		JWTSecret        string        `envconfig:"SUPABASE_JWT_SECRET"`
		Timeout          time.Duration `envconfig:"AUTH_TIMEOUT" default:"5s"`
		FailureThreshold int           `envconfig:"AUTH_BREAKER_FAILURES" default:"5"`
		SuccessThreshold int           `envconfig:"AUTH_BREAKER_SUCCESSES" default:"2"`
		OpenTimeout      time.Duration `envconfig:"AUTH_BREAKER_OPEN" default:"60s"`
	}

	Cache struct {
		RedisURL string        `envconfig:"REDIS_URL"`
		AuthTTL  time.Duration `envconfig:"AUTH_CACHE_TTL" default:"0s"`
	}

	TUI struct {
		UserEmail string `envconfig:"TUI_USER_EMAIL"`
	}
}

func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// AuthCacheEnabled reports whether verified identities are cached in Redis.
func (c *Config) AuthCacheEnabled() bool {
	return c.Cache.RedisURL != "" && c.Cache.AuthTTL > 0
}

func (c *Config) validate() error {
	switch c.Auth.Mode {
	case AuthModeSupabase:
		if c.Auth.SupabaseURL == "" || c.Auth.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required when AUTH_MODE=%s", AuthModeSupabase)
		}
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required when AUTH_MODE=%s", AuthModeJWT)
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadDatabase reads the config without requiring auth settings; the operator
// console talks to the database directly.
func LoadDatabase() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
