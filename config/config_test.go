package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("port: got %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if !cfg.Server.Fallback() {
		t.Errorf("port fallback should default to true")
	}
	if !cfg.RateLimit.IsEnabled() {
		t.Errorf("rate limiting should default to enabled")
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("cache backend: got %q, want %q", cfg.Cache.Backend, DefaultCacheBackend)
	}
	if cfg.Limits.MaxTermMonths != DefaultMaxTermMonths {
		t.Errorf("max term: got %d, want %d", cfg.Limits.MaxTermMonths, DefaultMaxTermMonths)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := writeConfig(t, `server:
  port: 9090
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("host: got %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("cache ttl: got %v, want %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
}

func TestLoad_Full(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6380")

	p := writeConfig(t, `server:
  host: 0.0.0.0
  port: 8181
  port_fallback: false
  shutdown_timeout: 5s
rate_limit:
  enabled: true
  capacity: 10
  refill: 30s
cache:
  backend: redis
  addr: localhost:6379
  addr_env: TEST_REDIS_ADDR
  ttl: 1h
limits:
  max_loan_amount: 5000000
  max_interest_rate: 36
  max_term_months: 480
log:
  level: debug
  format: text
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Fallback() {
		t.Errorf("port_fallback: got true, want false")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown_timeout: got %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.RateLimit.Capacity != 10 || cfg.RateLimit.Refill != 30*time.Second {
		t.Errorf("rate_limit: got %+v", cfg.RateLimit)
	}
	if got := cfg.Cache.RedisAddr(); got != "redis.internal:6380" {
		t.Errorf("redis addr: got %q, want env override", got)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("cache ttl: got %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Limits.MaxLoanAmount != 5000000 || cfg.Limits.MaxInterestRate != 36 || cfg.Limits.MaxTermMonths != 480 {
		t.Errorf("limits: got %+v", cfg.Limits)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_RedisAddrFallsBackToFile(t *testing.T) {
	t.Setenv("UNSET_REDIS_ADDR", "")
	p := writeConfig(t, `cache:
  backend: redis
  addr: localhost:6379
  addr_env: UNSET_REDIS_ADDR
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Cache.RedisAddr(); got != "localhost:6379" {
		t.Errorf("redis addr: got %q, want localhost:6379", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"zero capacity", "rate_limit:\n  capacity: 0\n"},
		{"zero refill", "rate_limit:\n  refill: 0s\n"},
		{"unknown backend", "cache:\n  backend: memcached\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
		{"negative ttl", "cache:\n  ttl: -1m\n"},
		{"zero max loan", "limits:\n  max_loan_amount: 0\n"},
		{"zero max term", "limits:\n  max_term_months: 0\n"},
		{"unknown log level", "log:\n  level: verbose\n"},
		{"unknown log format", "log:\n  format: xml\n"},
		{"bad yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// startWatch runs Watch on path until the test ends and returns the
// channel of applied configs.
func startWatch(t *testing.T, path string) <-chan *Config {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { changes <- cfg })
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Watch did not stop after cancel")
		}
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	return changes
}

func nextChange(t *testing.T, changes <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-changes:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
		return nil
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "limits:\n  max_term_months: 360\n")
	changes := startWatch(t, p)

	if err := os.WriteFile(p, []byte("limits:\n  max_term_months: 120\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// Truncate and write arrive as separate events but reload once.
	if got := nextChange(t, changes).Limits.MaxTermMonths; got != 120 {
		t.Errorf("max_term_months: got %d, want 120", got)
	}
}

func TestWatch_CoalescesBurst(t *testing.T) {
	p := writeConfig(t, "limits:\n  max_term_months: 360\n")
	changes := startWatch(t, p)

	for _, months := range []string{"100", "200", "300"} {
		if err := os.WriteFile(p, []byte("limits:\n  max_term_months: "+months+"\n"), 0o600); err != nil {
			t.Fatalf("rewrite config: %v", err)
		}
	}

	if got := nextChange(t, changes).Limits.MaxTermMonths; got != 300 {
		t.Errorf("first reload should see the last write, got max_term_months %d", got)
	}

	select {
	case cfg := <-changes:
		t.Errorf("unexpected second reload: %+v", cfg.Limits)
	case <-time.After(3 * reloadDelay):
	}
}

func TestWatch_AtomicReplace(t *testing.T) {
	p := writeConfig(t, "limits:\n  max_term_months: 360\n")
	changes := startWatch(t, p)

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte("limits:\n  max_term_months: 48\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if got := nextChange(t, changes).Limits.MaxTermMonths; got != 48 {
		t.Errorf("max_term_months: got %d, want 48", got)
	}
}

func TestWatch_InvalidFileKeepsWaiting(t *testing.T) {
	p := writeConfig(t, "limits:\n  max_term_months: 360\n")
	changes := startWatch(t, p)

	if err := os.WriteFile(p, []byte("limits:\n  max_term_months: 0\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	select {
	case cfg := <-changes:
		t.Fatalf("invalid config applied: %+v", cfg.Limits)
	case <-time.After(4 * reloadDelay):
	}

	if err := os.WriteFile(p, []byte("limits:\n  max_term_months: 60\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if got := nextChange(t, changes).Limits.MaxTermMonths; got != 60 {
		t.Errorf("max_term_months: got %d, want 60", got)
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.yaml"), func(*Config) {})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}
