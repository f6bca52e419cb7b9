package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/cache"
	"filmtrack/internal/config"
	"filmtrack/internal/logging"
	"filmtrack/internal/metadata"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	mu       sync.Mutex
	logger   *slog.Logger
	store    blobstore.Store
	cache    *cache.Cache
	resolver *metadata.Resolver
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = strings.ToLower(level)
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		return c.logger, nil
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger.With(logging.String(logging.FieldComponent, "cli"))
	return c.logger, nil
}

// openCache opens the configured persistent tier and wraps it in the
// partitioned cache. The store stays open until close.
func (c *commandContext) openCache(ctx context.Context) (*cache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.log()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		return c.cache, nil
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	opts, err := cacheOptions(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	c.store = store
	c.cache = cache.New(store, opts...)
	return c.cache, nil
}

func (c *commandContext) openResolver(ctx context.Context) (*metadata.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	cached, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := c.log()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolver != nil {
		return c.resolver, nil
	}
	resolver, err := newResolver(cfg, cached, logger)
	if err != nil {
		return nil, err
	}
	c.resolver = resolver
	return resolver, nil
}

func (c *commandContext) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store, c.cache, c.resolver = nil, nil, nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close cache store: %w", err)
	}
	return nil
}
