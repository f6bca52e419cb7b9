package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireCredentials reports whether a TMDB credential is configured. Commands
// that only inspect the local cache skip this check.
func (c *Config) RequireCredentials() error {
	if c.TMDB.APIKey != "" || c.TMDB.AccessToken != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("tmdb.api_key or tmdb.access_token is required. Set TMDB_API_KEY env var or edit %s (create with 'filmtrack config init')", defaultPath)
}

func (c *Config) validateTMDB() error {
	if !strings.HasPrefix(c.TMDB.BaseURL, "http://") && !strings.HasPrefix(c.TMDB.BaseURL, "https://") {
		return fmt.Errorf("tmdb.base_url must be an http(s) URL, got %q", c.TMDB.BaseURL)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.AcceptThreshold < 0 || c.Search.AcceptThreshold > 1 {
		return errors.New("search.accept_threshold must be between 0 and 1")
	}
	if c.Search.FallbackThreshold < 0 || c.Search.FallbackThreshold > 1 {
		return errors.New("search.fallback_threshold must be between 0 and 1")
	}
	if c.Search.FallbackThreshold > c.Search.AcceptThreshold {
		return errors.New("search.fallback_threshold must not exceed search.accept_threshold")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "sqlite", "file":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path must be set for the %s backend", c.Cache.Backend)
		}
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis.addr must be set when cache.backend is redis")
		}
	case "memory":
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want sqlite, file, redis or memory)", c.Cache.Backend)
	}
	for name, limits := range c.Cache.Buckets {
		if limits.MaxItems < 0 || limits.MaxBytes < 0 || limits.ExpirationHours < 0 {
			return fmt.Errorf("cache.buckets.%s: limits must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
