package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey string `toml:"api_key"`
	// AccessToken is a v4 read access token sent as a bearer header. When set
	// it takes precedence over APIKey.
	AccessToken    string `toml:"access_token"`
	BaseURL        string `toml:"base_url"`
	ImageBaseURL   string `toml:"image_base_url"`
	Language       string `toml:"language"`
	IncludeAdult   bool   `toml:"include_adult"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (t TMDB) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Queue controls spacing of outbound TMDB requests.
type Queue struct {
	RequestIntervalMS int `toml:"request_interval_ms"`
}

// Interval returns the minimum gap between two consecutive requests.
func (q Queue) Interval() time.Duration {
	return time.Duration(q.RequestIntervalMS) * time.Millisecond
}

// Search contains title resolution tuning.
type Search struct {
	AcceptThreshold      float64 `toml:"accept_threshold"`
	FallbackThreshold    float64 `toml:"fallback_threshold"`
	MaxStrategies        int     `toml:"max_strategies"`
	ImageLimit           int     `toml:"image_limit"`
	IncludeImageLanguage string  `toml:"include_image_language"`
}

// BucketLimits overrides cache limits for a single bucket. Zero values keep
// the cache-wide setting.
type BucketLimits struct {
	MaxItems        int `toml:"max_items"`
	MaxBytes        int `toml:"max_bytes"`
	ExpirationHours int `toml:"expiration_hours"`
}

// Cache contains configuration for the partitioned response cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
	// Backend selects the persistent tier: sqlite, file, redis or memory.
	Backend              string                  `toml:"backend"`
	Path                 string                  `toml:"path"`
	Namespace            string                  `toml:"namespace"`
	ExpirationHours      int                     `toml:"expiration_hours"`
	MaxItems             int                     `toml:"max_items"`
	MaxBytes             int                     `toml:"max_bytes"`
	QuotaBytes           int64                   `toml:"quota_bytes"`
	EmergencyKeepMinutes int                     `toml:"emergency_keep_minutes"`
	Buckets              map[string]BucketLimits `toml:"buckets"`
}

// Expiration returns the default entry lifetime.
func (c Cache) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// EmergencyWindow returns how much recent data survives a quota failure.
func (c Cache) EmergencyWindow() time.Duration {
	return time.Duration(c.EmergencyKeepMinutes) * time.Minute
}

// Redis contains connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format      string   `toml:"format"`
	Level       string   `toml:"level"`
	OutputPaths []string `toml:"output_paths"`
}

// Config encapsulates all configuration values for filmtrack.
//
// Configuration sections by subsystem:
//   - TMDB: credentials and endpoint of The Movie Database API
//   - Queue: spacing between outbound requests
//   - Search: title resolution thresholds and limits
//   - Cache: persistent tier backend and bucket limits
//   - Redis: connection for the redis cache backend
//   - Logging: log format, level and destinations
type Config struct {
	TMDB    TMDB    `toml:"tmdb"`
	Queue   Queue   `toml:"queue"`
	Search  Search  `toml:"search"`
	Cache   Cache   `toml:"cache"`
	Redis   Redis   `toml:"redis"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML, masking credentials.
func (c *Config) Encode() (string, error) {
	clone := *c
	clone.TMDB.APIKey = mask(clone.TMDB.APIKey)
	clone.TMDB.AccessToken = mask(clone.TMDB.AccessToken)
	clone.Redis.Password = mask(clone.Redis.Password)
	data, err := toml.Marshal(clone)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "filmtrack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/filmtrack"
	}
	return filepath.Join(home, ".cache", "filmtrack")
}

// Sample returns the commented sample configuration.
func Sample() string { return sampleConfig }

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
