package main

import (
	"context"
	"fmt"
	"log/slog"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/cache"
	"filmtrack/internal/config"
	"filmtrack/internal/metadata"
	"filmtrack/internal/requestqueue"
	"filmtrack/internal/search"
	"filmtrack/internal/tmdb"
)

const redisKeyPrefix = "filmtrack:"

// openStore opens the persistent tier named by cache.backend and applies the
// total quota. A disabled cache keeps responses in memory for the lifetime
// of the command.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (blobstore.Store, error) {
	var (
		store blobstore.Store
		err   error
	)
	backend := cfg.Cache.Backend
	if !cfg.Cache.Enabled {
		backend = "memory"
	}
	switch backend {
	case "memory":
		store = blobstore.NewMemoryStore()
	case "file":
		store, err = blobstore.OpenFileStore(cfg.Cache.Path, logger)
	case "sqlite":
		store, err = blobstore.OpenSQLiteStore(cfg.Cache.Path, logger)
	case "redis":
		store, err = blobstore.DialRedis(ctx, blobstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, redisKeyPrefix)
	default:
		return nil, fmt.Errorf("cache.backend: unsupported value %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache store: %w", backend, err)
	}
	return blobstore.WithQuota(store, cfg.Cache.QuotaBytes), nil
}

// cacheOptions maps the [cache] section onto cache options.
func cacheOptions(cfg *config.Config, logger *slog.Logger) ([]cache.Option, error) {
	opts := []cache.Option{
		cache.WithNamespace(cfg.Cache.Namespace),
		cache.WithPolicy(cache.Policy{
			MaxItems:   cfg.Cache.MaxItems,
			MaxBytes:   cfg.Cache.MaxBytes,
			Expiration: cfg.Cache.Expiration(),
		}),
		cache.WithEmergencyWindow(cfg.Cache.EmergencyWindow()),
		cache.WithLogger(logger),
	}
	for name, limits := range cfg.Cache.Buckets {
		bucket, err := cache.ParseBucket(name)
		if err != nil {
			return nil, fmt.Errorf("cache.buckets: %w", err)
		}
		opts = append(opts, cache.WithBucketPolicy(bucket, cache.Policy{
			MaxItems:   limits.MaxItems,
			MaxBytes:   limits.MaxBytes,
			Expiration: hours(limits.ExpirationHours),
		}))
	}
	return opts, nil
}

func newTMDBClient(cfg *config.Config) (*tmdb.Client, error) {
	return tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithAccessToken(cfg.TMDB.AccessToken),
		tmdb.WithIncludeAdult(cfg.TMDB.IncludeAdult),
		tmdb.WithTimeout(cfg.TMDB.Timeout()),
	)
}

func newResolver(cfg *config.Config, c *cache.Cache, logger *slog.Logger) (*metadata.Resolver, error) {
	client, err := newTMDBClient(cfg)
	if err != nil {
		return nil, err
	}
	queue := requestqueue.New(cfg.Queue.Interval(), requestqueue.WithLogger(logger))
	return metadata.New(client, c, queue,
		metadata.WithLogger(logger),
		metadata.WithThresholds(search.Thresholds{
			Accept:   cfg.Search.AcceptThreshold,
			Fallback: cfg.Search.FallbackThreshold,
		}),
		metadata.WithMaxStrategies(cfg.Search.MaxStrategies),
		metadata.WithImageLimit(cfg.Search.ImageLimit),
		metadata.WithImageLanguage(cfg.Search.IncludeImageLanguage),
		metadata.WithLanguage(cfg.TMDB.Language),
	), nil
}
