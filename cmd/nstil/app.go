package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/redis/go-redis/v9"

	"github.com/unowned-ai/nstil/pkg/api"
	"github.com/unowned-ai/nstil/pkg/cache"
	"github.com/unowned-ai/nstil/pkg/config"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/store"
	"github.com/unowned-ai/nstil/pkg/theme"
)

// app holds everything a command needs. It is built once per invocation and
// closed when the command returns.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	backend journal.Backend
	themes  *theme.Store

	local   *store.Store
	redis   *redis.Client
	closers []func() error
}

type appOptions struct {
	// detectScheme asks the terminal for its background when the config
	// does not pin an OS scheme.
	detectScheme bool
}

func openApp(ctx context.Context, o appOptions) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	if err := a.init(ctx, o); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, o appOptions) error {
	cfg := a.cfg

	if cfg.Cache.UseRedis() {
		client, err := cache.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		a.redis = client
		a.closers = append(a.closers, client.Close)
	}

	// The local store also holds settings, so it is opened whenever
	// Redis is not there to keep the theme preference.
	if cfg.Backend == config.BackendLocal || a.redis == nil {
		s, err := store.Open(ctx, store.Options{
			Path:       cfg.Store.Path,
			DisableWAL: cfg.Store.DisableWAL,
			Sync:       cfg.Store.Sync,
		}, a.log)
		if err != nil {
			return err
		}
		a.local = s
		a.closers = append(a.closers, s.Close)
	}

	switch cfg.Backend {
	case config.BackendLocal:
		if _, err := a.local.EnsureDefaultJournal(ctx); err != nil {
			return err
		}
		a.backend = a.local
	case config.BackendRemote:
		a.backend = api.New(cfg.API.URL, api.NewStaticToken(cfg.API.Token),
			api.WithTimeout(cfg.API.Timeout),
			api.WithLogger(a.log),
			api.WithUnauthorizedHook(func() {
				a.log.Warn("session rejected by server; set a fresh api.token")
			}),
		)
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.Cache.Enabled {
		var b cache.Backend = cache.NewMemory()
		if a.redis != nil {
			b = cache.NewRedis(a.redis)
		}
		a.backend = cache.Wrap(a.backend, b,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithPrefix(cfg.Cache.Prefix),
			cache.WithLogger(a.log),
		)
	}

	var kv theme.KV
	if a.redis != nil {
		kv = cache.NewRedisKV(a.redis, cfg.Cache.Prefix)
	} else {
		kv = a.local.Settings()
	}
	var opts []theme.Option
	if scheme := osScheme(cfg.Theme.OSScheme, o.detectScheme); scheme != "" {
		opts = append(opts, theme.WithOSScheme(scheme))
	}
	a.themes = theme.NewStore(kv, a.log, opts...)
	a.themes.Initialize(ctx)
	a.closers = append(a.closers, func() error {
		a.themes.Close()
		return nil
	})
	return nil
}

// osScheme returns the configured scheme, or the terminal's when detect is
// set and nothing is configured.
func osScheme(configured string, detect bool) theme.Scheme {
	if configured != "" {
		return theme.Scheme(configured)
	}
	if !detect {
		return ""
	}
	if lipgloss.HasDarkBackground() {
		return theme.SchemeDark
	}
	return theme.SchemeLight
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.log.Sync()
	return errors.Join(errs...)
}
