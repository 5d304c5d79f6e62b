package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/config"
	"github.com/sells-group/lead-dashboard/internal/leads"
	"github.com/sells-group/lead-dashboard/internal/resilience"
	"github.com/sells-group/lead-dashboard/internal/scorer"
	"github.com/sells-group/lead-dashboard/internal/source"
	anthropicpkg "github.com/sells-group/lead-dashboard/pkg/anthropic"
	openaipkg "github.com/sells-group/lead-dashboard/pkg/openai"
)

// appEnv holds the loaded snapshot and the analyzer shared by commands.
type appEnv struct {
	Snapshot *leads.Snapshot
	Analyzer *scorer.Analyzer
	cache    *scorer.RedisCache
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// initEnv validates cfg for mode, loads the snapshot and, when withAnalyzer
// is set, builds the analyzer. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string, withAnalyzer bool) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	env := &appEnv{Snapshot: snap}
	if withAnalyzer {
		env.Analyzer, env.cache = buildAnalyzer(ctx, cfg)
	}
	return env, nil
}

// loadSnapshot opens the configured source and normalizes it.
func loadSnapshot(ctx context.Context, data config.DataConfig) (*leads.Snapshot, error) {
	src, err := source.Open(ctx, source.Config{
		Driver:      data.Driver,
		Path:        data.Path,
		DatabaseURL: data.DatabaseURL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open source")
	}
	defer src.Close() //nolint:errcheck

	return leads.Load(ctx, src)
}

// buildAnalyzer wires the configured provider, breaker, rate limit and
// cache. A cache that fails to answer a ping is skipped.
func buildAnalyzer(ctx context.Context, c *config.Config) (*scorer.Analyzer, *scorer.RedisCache) {
	opts := []scorer.AnalyzerOption{
		scorer.WithRemoteLimit(c.Scoring.RemoteLimit),
		scorer.WithConcurrency(c.Scoring.Concurrency),
	}

	provider := newProvider(c)
	if provider == nil {
		zap.L().Info("remote scoring disabled, using rule-based analysis")
		return scorer.NewAnalyzer(opts...), nil
	}

	remote := scorer.NewRemoteScorer(provider,
		scorer.WithTimeout(time.Duration(c.Scoring.TimeoutSecs)*time.Second),
		scorer.WithBreaker(resilience.BreakerFromConfig(provider.Name(), c.Scoring.BreakerFailures, c.Scoring.BreakerResetSecs)),
		scorer.WithRateLimit(c.Scoring.RatePerSec, c.Scoring.RateBurst),
	)
	opts = append(opts, scorer.WithRemote(remote))

	var cache *scorer.RedisCache
	if c.Cache.RedisAddr != "" {
		cache = scorer.NewRedisCache(scorer.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			TTL:      time.Duration(c.Cache.TTLHours) * time.Hour,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := cache.Ping(pingCtx); err != nil {
			zap.L().Warn("analysis cache unavailable, continuing without it",
				zap.String("addr", c.Cache.RedisAddr),
				zap.Error(err),
			)
			_ = cache.Close()
			cache = nil
		} else {
			opts = append(opts, scorer.WithCache(cache))
		}
	}

	zap.L().Info("remote scoring enabled",
		zap.String("provider", provider.Name()),
		zap.Bool("cache", cache != nil),
	)
	return scorer.NewAnalyzer(opts...), cache
}

// newProvider returns the configured LLM provider, or nil for none.
func newProvider(c *config.Config) scorer.Provider {
	switch strings.ToLower(c.Scoring.Provider) {
	case config.ProviderAnthropic:
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		return scorer.NewAnthropicProvider(client, c.Anthropic.Model, int64(c.Anthropic.MaxTokens))
	case config.ProviderOpenAI:
		var opts []openaipkg.Option
		if c.OpenAI.Model != "" {
			opts = append(opts, openaipkg.WithModel(c.OpenAI.Model))
		}
		if c.OpenAI.BaseURL != "" {
			opts = append(opts, openaipkg.WithBaseURL(c.OpenAI.BaseURL))
		}
		client := openaipkg.NewClient(c.OpenAI.Key, opts...)
		return scorer.NewOpenAIProvider(client, "")
	default:
		return nil
	}
}
