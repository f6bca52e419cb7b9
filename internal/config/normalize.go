package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTMDB()
	c.normalizeQueue()
	c.normalizeSearch()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	if c.TMDB.AccessToken == "" {
		if value, ok := os.LookupEnv("TMDB_ACCESS_TOKEN"); ok {
			c.TMDB.AccessToken = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.AccessToken = strings.TrimSpace(c.TMDB.AccessToken)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeoutSeconds
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.RequestIntervalMS < 0 {
		c.Queue.RequestIntervalMS = 0
	}
}

func (c *Config) normalizeSearch() {
	if c.Search.MaxStrategies <= 0 {
		c.Search.MaxStrategies = defaultMaxStrategies
	}
	if c.Search.ImageLimit <= 0 {
		c.Search.ImageLimit = defaultImageLimit
	}
	c.Search.IncludeImageLanguage = strings.TrimSpace(c.Search.IncludeImageLanguage)
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	c.Cache.Namespace = strings.TrimSpace(c.Cache.Namespace)
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = defaultCacheNamespace
	}
	if c.Cache.ExpirationHours <= 0 {
		c.Cache.ExpirationHours = defaultCacheExpirationHours
	}
	if c.Cache.MaxItems <= 0 {
		c.Cache.MaxItems = defaultCacheMaxItems
	}
	if c.Cache.MaxBytes <= 0 {
		c.Cache.MaxBytes = defaultCacheMaxBytes
	}
	if c.Cache.QuotaBytes < 0 {
		c.Cache.QuotaBytes = 0
	}
	if c.Cache.EmergencyKeepMinutes <= 0 {
		c.Cache.EmergencyKeepMinutes = defaultEmergencyKeepMinutes
	}
	if len(c.Cache.Buckets) > 0 {
		normalized := make(map[string]BucketLimits, len(c.Cache.Buckets))
		for name, limits := range c.Cache.Buckets {
			key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
			normalized[key] = limits
		}
		c.Cache.Buckets = normalized
	}

	if strings.TrimSpace(c.Cache.Path) == "" {
		switch c.Cache.Backend {
		case "sqlite":
			c.Cache.Path = filepath.Join(defaultCacheDir(), "tmdb-cache.db")
		case "file":
			c.Cache.Path = filepath.Join(defaultCacheDir(), "tmdb")
		}
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text", "pretty":
		format = defaultLogFormat
	}
	c.Logging.Format = format

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	paths := make([]string, 0, len(c.Logging.OutputPaths))
	for _, path := range c.Logging.OutputPaths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	c.Logging.OutputPaths = paths
}
