package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the default config lookup at an empty directory so a real
// user config never leaks into tests.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv(EnvConfigPath, "")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
backend: remote
api:
  url: "https://api.nstil.test"
  token: "abc"
  timeout: "3s"
store:
  path: "/tmp/nstil.db"
  disable_wal: true
  sync: "full"
cache:
  enabled: true
  redis_url: "redis://localhost:6379/2"
  ttl: "1m"
log:
  level: "debug"
  pretty: false
theme:
  os_scheme: "light"
`

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendLocal {
		t.Errorf("expected default backend %q, got %q", BackendLocal, cfg.Backend)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %v", cfg.API.Timeout)
	}
	if cfg.Store.DisableWAL || cfg.Store.Sync != "NORMAL" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Cache.Enabled || cfg.Cache.Prefix != "nstil:" {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Log.Level)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendRemote || cfg.API.URL != "https://api.nstil.test" {
		t.Errorf("unexpected api config: backend=%q %+v", cfg.Backend, cfg.API)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.API.Timeout)
	}
	if !cfg.Store.DisableWAL {
		t.Errorf("expected wal disabled")
	}
	if cfg.Store.Sync != "FULL" {
		t.Errorf("expected sync to be upper-cased to FULL, got %q", cfg.Store.Sync)
	}
	if !cfg.Cache.UseRedis() {
		t.Errorf("expected redis cache to be selected")
	}
	if cfg.Theme.OSScheme != "light" {
		t.Errorf("expected os_scheme light, got %q", cfg.Theme.OSScheme)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	isolate(t)
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv(EnvConfigPath, path)
	t.Setenv("NSTIL_LOG_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected env to override log level, got %q", cfg.Log.Level)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Backend: BackendLocal,
			API:     APIConfig{URL: "http://localhost:8000", Timeout: time.Second},
			Store:   StoreConfig{Sync: "normal"},
			Log:     LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Backend = "cloud" }, true},
		{"remote needs absolute url", func(c *Config) { c.Backend = BackendRemote; c.API.URL = "api" }, true},
		{"bad sync", func(c *Config) { c.Store.Sync = "SOMETIMES" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"cache without ttl", func(c *Config) { c.Cache.Enabled = true }, true},
		{"bad scheme", func(c *Config) { c.Theme.OSScheme = "sepia" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NSTIL_DOTENV_PROBE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NSTIL_DOTENV_PROBE", "")
	os.Unsetenv("NSTIL_DOTENV_PROBE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("NSTIL_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
