package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lectio-ai/lectio/pkg/cache"
	"github.com/lectio-ai/lectio/pkg/cache/sqlite"
	"github.com/lectio-ai/lectio/pkg/config"
	"github.com/lectio-ai/lectio/pkg/logging"
	"github.com/lectio-ai/lectio/pkg/planner"
	"github.com/lectio-ai/lectio/pkg/provider"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   cache.Store
	planner *planner.Planner
	closers []func() error
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	store, err := a.openStore()
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store

	a.planner = planner.New(planner.Config{
		Store:     store,
		Generator: a.generator(),
		TTL:       cfg.Cache.TTL,
		Logger:    logger,
	})
	return a, nil
}

func (a *app) openStore() (cache.Store, error) {
	switch a.cfg.Cache.Backend {
	case "sqlite":
		c, err := sqlite.New(a.cfg.Cache.DSN)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return cache.NewMemory(nil), nil
	}
}

// registry builds the provider registry with per-provider overrides from config.
func (a *app) registry() *provider.Registry {
	overrides := make(map[string]provider.Settings, len(a.cfg.Providers))
	for _, p := range a.cfg.Providers {
		overrides[p.Name] = provider.Settings{Endpoint: p.Endpoint, Model: p.Model}
	}
	return provider.Builtin(overrides)
}

// activeVariant resolves the configured provider. An unknown name keeps the
// default request format but carries its own endpoint and model overrides.
func (a *app) activeVariant() (provider.Variant, bool) {
	active := a.cfg.ActiveProvider()
	variant, known := a.registry().Resolve(active.Name)
	if !known {
		variant = provider.NewOpenAI(provider.Settings{Endpoint: active.Endpoint, Model: active.Model})
	}
	return variant, known
}

// generator returns nil when the active provider has no API key.
func (a *app) generator() planner.Generator {
	active := a.cfg.ActiveProvider()
	variant, known := a.activeVariant()
	if !known {
		a.logger.Warn("unknown provider, using default request format",
			zap.String("provider", active.Name),
			zap.String("format", variant.Name()))
	}

	if active.APIKey == "" {
		a.logger.Info("no API key configured, plans will use the fallback",
			zap.String("provider", active.Name),
			zap.String("env", config.KeyEnv(active.Name)))
		return nil
	}

	a.logger.Info("AI provider configured", zap.String("provider", active.Name), zap.String("model", variant.Model()))
	httpClient := &http.Client{Timeout: a.cfg.AI.Timeout}
	return provider.NewClient(variant, active.APIKey, httpClient, a.logger)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
