// Package planner produces weekly reading plans. It consults the cache,
// asks the configured provider on a miss, and falls back to a fixed plan
// whenever generation is unavailable or unusable.
package planner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lectio-ai/lectio/pkg/cache"
	"github.com/lectio-ai/lectio/pkg/fallback"
	"github.com/lectio-ai/lectio/pkg/models"
	"github.com/lectio-ai/lectio/pkg/parser"
	"github.com/lectio-ai/lectio/pkg/prompt"
	"github.com/lectio-ai/lectio/pkg/provider"
)

// Generator turns a prompt into raw model text. *provider.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds Planner dependencies.
type Config struct {
	// Store caches parsed plans. Required.
	Store cache.Store
	// Generator is nil when no provider key is configured.
	Generator Generator
	// TTL defaults to cache.DefaultTTL.
	TTL    time.Duration
	Logger *zap.Logger
}

// Planner is safe for concurrent use.
type Planner struct {
	store     cache.Store
	generator Generator
	ttl       time.Duration
	logger    *zap.Logger

	requests      atomic.Int64
	cacheHits     atomic.Int64
	providerCalls atomic.Int64
	fallbacks     atomic.Int64
}

// New creates a Planner.
func New(cfg Config) *Planner {
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Planner{
		store:     cfg.Store,
		generator: cfg.Generator,
		ttl:       cfg.TTL,
		logger:    cfg.Logger,
	}
}

// GenerateReadings returns a plan for the audience. It never fails: any
// problem with generation yields the fallback plan.
func (p *Planner) GenerateReadings(ctx context.Context, ageGroup, gender string) []models.ReadingEntry {
	p.requests.Add(1)
	key := models.ReadingRequest{AgeGroup: ageGroup, Gender: gender}
	log := p.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("age_group", ageGroup),
		zap.String("gender", gender))

	if plan, ok := p.store.Get(ctx, key); ok {
		p.cacheHits.Add(1)
		log.Debug("cache hit")
		return plan
	}

	if p.generator == nil {
		log.Info("no provider configured, using fallback plan")
		return p.fallback()
	}

	p.providerCalls.Add(1)
	start := time.Now()
	text, err := p.generator.Generate(ctx, prompt.Build(ageGroup, gender))
	if err != nil {
		logGenerateError(log, err)
		return p.fallback()
	}

	plan := parser.Parse(text)
	if len(plan) == 0 {
		log.Warn("provider response yielded no readings, using fallback plan",
			zap.Int("response_length", len(text)))
		return p.fallback()
	}

	if err := p.store.Set(ctx, key, plan, p.ttl); err != nil {
		log.Error("failed to cache plan", zap.Error(err))
	}
	log.Info("generated plan",
		zap.Int("readings", len(plan)),
		zap.Duration("latency", time.Since(start)))
	return plan
}

// Stats returns a snapshot of the planner counters.
func (p *Planner) Stats() models.PlannerStats {
	return models.PlannerStats{
		Requests:      p.requests.Load(),
		CacheHits:     p.cacheHits.Load(),
		ProviderCalls: p.providerCalls.Load(),
		Fallbacks:     p.fallbacks.Load(),
	}
}

// CacheStats reports the underlying store's statistics.
func (p *Planner) CacheStats(ctx context.Context) (models.CacheStats, error) {
	return p.store.Stats(ctx)
}

func (p *Planner) fallback() []models.ReadingEntry {
	p.fallbacks.Add(1)
	return fallback.Plan()
}

func logGenerateError(log *zap.Logger, err error) {
	var upstream *provider.UpstreamError
	switch {
	case errors.Is(err, provider.ErrRateLimited):
		log.Warn("provider at capacity, using fallback plan", zap.Error(err))
	case errors.As(err, &upstream):
		log.Error("provider returned an error, using fallback plan",
			zap.String("provider", upstream.Provider),
			zap.Int("status", upstream.StatusCode),
			zap.String("body", upstream.Body))
	case errors.Is(err, provider.ErrTransport):
		log.Error("provider unreachable, using fallback plan", zap.Error(err))
	default:
		log.Error("provider call failed, using fallback plan", zap.Error(err))
	}
}
