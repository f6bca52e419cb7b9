package testsupport

import (
	"path/filepath"
	"testing"

	"filmtrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp cache location per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.TMDB.BaseURL = "http://127.0.0.1:0"
	cfgVal.Queue.RequestIntervalMS = 0
	cfgVal.Cache.Backend = "sqlite"
	cfgVal.Cache.Path = filepath.Join(base, "cache", "tmdb-cache.db")
	cfgVal.Logging.OutputPaths = []string{filepath.Join(base, "logs", "filmtrack.log")}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTMDBServer points the TMDB base URL at a stub server.
func WithTMDBServer(server *TMDBServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = server.URL()
	}
}

// WithCacheBackend selects the persistent tier. File backends get a fresh
// directory under the test's temp dir.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		if backend == "file" {
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "cache", "tmdb")
		}
	}
}

// WithCacheQuota sets the total persistent budget.
func WithCacheQuota(bytes int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.QuotaBytes = bytes
	}
}

// WithBucketLimits overrides limits for one bucket.
func WithBucketLimits(bucket string, limits config.BucketLimits) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Cache.Buckets == nil {
			b.cfg.Cache.Buckets = make(map[string]config.BucketLimits)
		}
		b.cfg.Cache.Buckets[bucket] = limits
	}
}
