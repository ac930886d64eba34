package config

import (
	"time"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config is the root configuration of the nstil CLI.
type Config struct {
	Backend string      `yaml:"backend" env:"NSTIL_BACKEND" env-default:"local"`
	API     APIConfig   `yaml:"api"`
	Store   StoreConfig `yaml:"store"`
	Cache   CacheConfig `yaml:"cache"`
	Log     LogConfig   `yaml:"log"`
	Theme   ThemeConfig `yaml:"theme"`
}

// APIConfig holds settings for the remote REST backend.
type APIConfig struct {
	URL     string        `yaml:"url"     env:"NSTIL_API_URL"     env-default:"http://localhost:8000"`
	Token   string        `yaml:"token"   env:"NSTIL_API_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"NSTIL_API_TIMEOUT" env-default:"15s"`
}

// StoreConfig holds settings for the local SQLite backend. WAL journaling is
// on unless DisableWAL is set.
type StoreConfig struct {
	Path       string `yaml:"path"        env:"NSTIL_DB_PATH"`
	DisableWAL bool   `yaml:"disable_wal" env:"NSTIL_DB_DISABLE_WAL"`
	Sync       string `yaml:"sync"        env:"NSTIL_DB_SYNC"        env-default:"NORMAL"`
}

// CacheConfig controls the entry query cache. An empty RedisURL selects the
// in-process cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"   env:"NSTIL_CACHE_ENABLED"   env-default:"false"`
	RedisURL string        `yaml:"redis_url" env:"NSTIL_REDIS_URL"`
	TTL      time.Duration `yaml:"ttl"       env:"NSTIL_CACHE_TTL"       env-default:"5m"`
	Prefix   string        `yaml:"prefix"    env:"NSTIL_CACHE_PREFIX"    env-default:"nstil:"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"NSTIL_LOG_LEVEL"  env-default:"warn"`
	Pretty bool   `yaml:"pretty" env:"NSTIL_LOG_PRETTY"`
}

// ThemeConfig overrides appearance detection. OSScheme is "light", "dark" or
// empty to ask the terminal.
type ThemeConfig struct {
	OSScheme string `yaml:"os_scheme" env:"NSTIL_OS_SCHEME"`
}

// UseRedis reports whether the cache should be backed by Redis.
func (c CacheConfig) UseRedis() bool {
	return c.Enabled && c.RedisURL != ""
}
