package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/unowned-ai/nstil/pkg/logger"
)

var syncModes = []string{"OFF", "NORMAL", "FULL", "EXTRA"}

// Validate checks enum fields and the settings the selected backend needs.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("backend must be %q or %q (got %q)", BackendLocal, BackendRemote, c.Backend)
	}

	if c.Backend == BackendRemote {
		u, err := url.Parse(c.API.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api.url must be an absolute URL (got %q)", c.API.URL)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0 (got %v)", c.API.Timeout)
	}

	c.Store.Sync = strings.ToUpper(c.Store.Sync)
	if !contains(syncModes, c.Store.Sync) {
		return fmt.Errorf("store.sync must be one of %v (got %q)", syncModes, c.Store.Sync)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 when the cache is enabled (got %v)", c.Cache.TTL)
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}

	switch c.Theme.OSScheme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme.os_scheme must be light, dark or empty (got %q)", c.Theme.OSScheme)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
