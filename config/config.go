package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the service configuration.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRateLimitCapacity = 60
	DefaultRateLimitRefill   = time.Minute

	DefaultCacheBackend = "memory"
	DefaultCacheTTL     = 10 * time.Minute

	DefaultMaxLoanAmount   = 1_000_000_000.0
	DefaultMaxInterestRate = 1000.0
	DefaultMaxTermMonths   = 600
)

// Config is the full contents of the service config file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Host is the interface to bind (default 127.0.0.1).
	Host string `yaml:"host"`

	// Port is the preferred port (default 8080).
	Port int `yaml:"port"`

	// PortFallback lets the server bind any free port when Port is taken.
	// Defaults to true; set to false to fail instead.
	PortFallback *bool `yaml:"port_fallback"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Fallback reports whether port fallback is enabled.
func (s ServerConfig) Fallback() bool {
	return s.PortFallback == nil || *s.PortFallback
}

// RateLimitConfig is a per-client token bucket. Reloaded on file change.
type RateLimitConfig struct {
	Enabled  *bool         `yaml:"enabled"`
	Capacity int           `yaml:"capacity"`
	Refill   time.Duration `yaml:"refill"`
}

// IsEnabled reports whether rate limiting is on (default true).
func (r RateLimitConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// CacheConfig selects where computed schedules are cached.
type CacheConfig struct {
	// Backend is one of: memory | redis | none.
	Backend string `yaml:"backend"`

	// Addr is the Redis address. AddrEnv, when set, names an environment
	// variable that overrides it.
	Addr    string `yaml:"addr"`
	AddrEnv string `yaml:"addr_env"`

	TTL time.Duration `yaml:"ttl"`
}

// RedisAddr returns the Redis address, preferring the environment.
func (c CacheConfig) RedisAddr() string {
	if c.AddrEnv != "" {
		if v := os.Getenv(c.AddrEnv); v != "" {
			return v
		}
	}
	return c.Addr
}

// LimitsConfig bounds accepted requests. Reloaded on file change.
type LimitsConfig struct {
	MaxLoanAmount   float64 `yaml:"max_loan_amount"`
	MaxInterestRate float64 `yaml:"max_interest_rate"`
	MaxTermMonths   int     `yaml:"max_term_months"`
}

type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// Load reads and parses the config file at path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		RateLimit: RateLimitConfig{
			Capacity: DefaultRateLimitCapacity,
			Refill:   DefaultRateLimitRefill,
		},
		Cache: CacheConfig{
			Backend: DefaultCacheBackend,
			AddrEnv: "REDIS_ADDR",
			TTL:     DefaultCacheTTL,
		},
		Limits: LimitsConfig{
			MaxLoanAmount:   DefaultMaxLoanAmount,
			MaxInterestRate: DefaultMaxInterestRate,
			MaxTermMonths:   DefaultMaxTermMonths,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [0, 65535]", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if cfg.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rate_limit.capacity must be positive, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.RateLimit.Refill <= 0 {
		return fmt.Errorf("rate_limit.refill must be positive")
	}
	switch cfg.Cache.Backend {
	case "memory", "none":
	case "redis":
		if cfg.Cache.RedisAddr() == "" {
			return fmt.Errorf("cache.backend redis needs cache.addr or a non-empty %s", cfg.Cache.AddrEnv)
		}
	default:
		return fmt.Errorf("cache.backend %q unknown: want memory|redis|none", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if cfg.Limits.MaxLoanAmount <= 0 {
		return fmt.Errorf("limits.max_loan_amount must be positive")
	}
	if cfg.Limits.MaxInterestRate < 0 {
		return fmt.Errorf("limits.max_interest_rate must not be negative")
	}
	if cfg.Limits.MaxTermMonths < 1 {
		return fmt.Errorf("limits.max_term_months must be at least 1")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format)
	}
	return nil
}
