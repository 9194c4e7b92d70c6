package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/cache"
	"github.com/Sternrassler/pokemon-export/pkg/client"
	"github.com/Sternrassler/pokemon-export/pkg/config"
	"github.com/Sternrassler/pokemon-export/pkg/export"
	"github.com/Sternrassler/pokemon-export/pkg/pagination"
	"github.com/Sternrassler/pokemon-export/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 3 * time.Second

// Build wires a Runner from configuration. The returned cleanup releases
// any connections and is safe to call when Build fails.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Runner, func(), error) {
	cleanup := func() {}

	if err := cfg.Validate(); err != nil {
		return nil, cleanup, err
	}

	store, closeStore := newCacheStore(ctx, cfg.Cache, logger)
	cleanup = closeStore

	clientCfg := client.DefaultConfig()
	clientCfg.UserAgent = cfg.API.UserAgent
	clientCfg.Timeout = cfg.API.Timeout
	clientCfg.Cache = store
	clientCfg.CacheTTL = cfg.Cache.TTL
	clientCfg.Limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.API.RatePerSecond,
		Burst:             cfg.API.Burst,
	}, logger)

	apiClient, err := client.New(clientCfg, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create api client: %w", err)
	}

	mode, err := pagination.ParseMode(cfg.API.Mode)
	if err != nil {
		return nil, cleanup, err
	}

	fetcher, err := pagination.NewFetcher(apiClient, pagination.Config{
		BaseURL:  cfg.API.BaseURL,
		PageSize: cfg.API.PageSize,
		Mode:     mode,
	}, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("create fetcher: %w", err)
	}

	logger.Info().
		Str("base_url", cfg.API.BaseURL).
		Str("mode", string(mode)).
		Int("page_size", cfg.API.PageSize).
		Str("cache", cfg.Cache.Backend).
		Bool("paced", clientCfg.Limiter.Enabled()).
		Msg("Exporter configured")

	return NewRunner(fetcher, export.NewWriter(logger), cfg.Output.Path, logger), cleanup, nil
}

// newCacheStore returns the configured cache backend, or nil when caching is
// off. An unreachable Redis disables caching for the run.
func newCacheStore(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Store, func()) {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemoryStore(0), func() {}
	case config.CacheRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn().
				Err(err).
				Str("redis_addr", cfg.RedisAddr).
				Msg("Redis unavailable; continuing without response cache")
			redisClient.Close()
			return nil, func() {}
		}

		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("Connected to Redis")
		return cache.NewRedisStore(redisClient), func() { redisClient.Close() }
	default:
		return nil, func() {}
	}
}
