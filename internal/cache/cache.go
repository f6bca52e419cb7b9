package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/logging"
	"filmtrack/internal/services"
)

const (
	// DefaultNamespace prefixes every persisted bucket record.
	DefaultNamespace = "filmtrack-tmdb"

	defaultEmergencyWindow = time.Hour

	optimizeListingAge = 2 * time.Hour
	optimizeDetailAge  = 7 * 24 * time.Hour
)

// Option configures a Cache.
type Option func(*Cache)

// WithNamespace sets the record name prefix.
func WithNamespace(namespace string) Option {
	return func(c *Cache) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithPolicy replaces the default bucket policy. Zero fields keep the stock
// limits.
func WithPolicy(policy Policy) Option {
	return func(c *Cache) {
		c.defaults = policy.merge(DefaultPolicy())
	}
}

// WithBucketPolicy overrides limits for one bucket. Zero fields fall back to
// the default policy.
func WithBucketPolicy(bucket Bucket, policy Policy) Option {
	return func(c *Cache) {
		if bucket.valid() {
			c.overrides[bucket] = policy
		}
	}
}

// WithEmergencyWindow sets how much recent data survives a quota failure.
func WithEmergencyWindow(window time.Duration) Option {
	return func(c *Cache) {
		if window > 0 {
			c.emergencyWindow = window
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.NewComponentLogger(logger, "cache")
	}
}

// WithoutInitialSweep skips the expiration sweep New runs by default.
func WithoutInitialSweep() Option {
	return func(c *Cache) { c.sweepOnOpen = false }
}

type bucketState struct {
	entries map[string]entry
	loaded  bool
	hits    uint64
	misses  uint64
}

// Cache is a partitioned, two-level response cache. Each bucket lives in
// memory and is mirrored to the persistent store as one record. A bucket is
// read from the store the first time it is touched and written back after
// every mutation.
type Cache struct {
	store           blobstore.Store
	namespace       string
	defaults        Policy
	overrides       map[Bucket]Policy
	emergencyWindow time.Duration
	now             func() time.Time
	logger          *slog.Logger
	sweepOnOpen     bool

	mu      sync.Mutex
	buckets [bucketCount]*bucketState
}

// New builds a cache over store and sweeps expired entries.
func New(store blobstore.Store, opts ...Option) *Cache {
	if store == nil {
		store = blobstore.NewMemoryStore()
	}
	c := &Cache{
		store:           store,
		namespace:       DefaultNamespace,
		defaults:        DefaultPolicy(),
		overrides:       make(map[Bucket]Policy),
		emergencyWindow: defaultEmergencyWindow,
		now:             time.Now,
		logger:          logging.NewComponentLogger(nil, "cache"),
		sweepOnOpen:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.buckets {
		c.buckets[i] = &bucketState{}
	}
	if c.sweepOnOpen {
		c.Sweep(context.Background())
	}
	return c
}

// Policy returns the effective limits for bucket.
func (c *Cache) Policy(bucket Bucket) Policy {
	if override, ok := c.overrides[bucket]; ok {
		return override.merge(c.defaults)
	}
	return c.defaults
}

// RecordName returns the persistent record name for bucket.
func (c *Cache) RecordName(bucket Bucket) string {
	return c.namespace + "-" + bucket.String()
}

// Get returns the payload stored under key. Expired entries are removed and
// reported absent.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if key == "" {
		return nil, false
	}
	bucket := BucketForKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.bucketLocked(ctx, bucket)
	e, ok := state.entries[key]
	if !ok {
		state.misses++
		c.logger.Debug("cache miss", logging.Bucket(bucket), logging.String("key", key))
		return nil, false
	}
	if c.expired(e, bucket) {
		delete(state.entries, key)
		state.misses++
		c.logger.Debug("cache entry expired",
			logging.Bucket(bucket),
			logging.String("key", key),
			logging.Duration("age", c.now().Sub(e.StoredAt)))
		c.persistLocked(ctx, bucket)
		return nil, false
	}
	state.hits++
	c.logger.Debug("cache hit", logging.Bucket(bucket), logging.String("key", key))
	return slices.Clone(e.Payload), true
}

// GetJSON decodes the payload under key into dst. A payload that no longer
// decodes into dst is treated as corrupt and removed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	payload, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		logging.WarnWithContext(c.logger, "discarding undecodable cache entry", "cache_corruption",
			logging.Bucket(BucketForKey(key)),
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "entry will be refetched"),
			logging.String(logging.FieldImpact, "one extra request"))
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores payload under key. payload must be valid JSON. Setting an
// identical payload on a fresh entry leaves the cache untouched. Storage
// failures are absorbed; the cache stays usable in memory.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return services.Wrap(services.ErrInvalidInput, "cache", "set", "empty cache key", nil)
	}
	compacted, err := compactPayload(payload)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "cache", "set", "payload is not valid JSON", err)
	}
	bucket := BucketForKey(key)
	policy := c.Policy(bucket)

	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.bucketLocked(ctx, bucket)

	existing, exists := state.entries[key]
	if exists && !c.expired(existing, bucket) && bytes.Equal(existing.Payload, compacted) {
		return nil
	}
	if !exists {
		if evicted := evictForInsert(state.entries, policy.MaxItems); len(evicted) > 0 {
			c.logger.Debug("evicted oldest entries",
				logging.Bucket(bucket),
				logging.Int("evicted", len(evicted)),
				logging.Int("max_items", policy.MaxItems))
		}
	}
	state.entries[key] = entry{Payload: compacted, StoredAt: c.now()}
	c.persistLocked(ctx, bucket)
	return nil
}

// SetJSON encodes value and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	payload, err := encodeJSON(value)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "cache", "set", "encode payload", err)
	}
	return c.Set(ctx, key, payload)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	bucket := BucketForKey(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.bucketLocked(ctx, bucket)
	if _, ok := state.entries[key]; !ok {
		return
	}
	delete(state.entries, key)
	c.persistLocked(ctx, bucket)
}

// Clear drops every bucket from memory and the store.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, bucket := range Buckets() {
		c.dropLocked(ctx, bucket)
	}
	c.logger.Info("cache cleared", logging.String("namespace", c.namespace))
}

// ClearBucket drops a single bucket.
func (c *Cache) ClearBucket(ctx context.Context, bucket Bucket) {
	if !bucket.valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(ctx, bucket)
	c.logger.Info("cache bucket cleared", logging.Bucket(bucket))
}

// Sweep removes expired entries from every bucket and returns how many were
// dropped.
func (c *Cache) Sweep(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var total int
	for _, bucket := range Buckets() {
		state := c.bucketLocked(ctx, bucket)
		removed := keepSince(state.entries, now.Add(-c.Policy(bucket).Expiration))
		if removed == 0 {
			continue
		}
		total += removed
		c.persistLocked(ctx, bucket)
	}
	if total > 0 {
		c.logger.Info("expired cache entries swept", logging.Int("removed", total))
	}
	return total
}

// Optimize keeps only recent entries: listings younger than two hours and
// details younger than seven days. It returns how many entries were dropped.
func (c *Cache) Optimize(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var total int
	for _, bucket := range Buckets() {
		maxAge := optimizeListingAge
		if bucket.isDetail() {
			maxAge = optimizeDetailAge
		}
		state := c.bucketLocked(ctx, bucket)
		removed := keepSince(state.entries, now.Add(-maxAge))
		if removed == 0 {
			continue
		}
		total += removed
		c.persistLocked(ctx, bucket)
	}
	c.logger.Info("cache optimized", logging.Int("removed", total))
	return total
}

// bucketLocked returns the in-memory state of bucket, loading it from the
// store on first use. Callers hold c.mu.
func (c *Cache) bucketLocked(ctx context.Context, bucket Bucket) *bucketState {
	state := c.buckets[bucket]
	if state.loaded {
		return state
	}
	state.loaded = true
	state.entries = make(map[string]entry)

	name := c.RecordName(bucket)
	data, err := c.store.Load(ctx, name)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return state
	case err != nil:
		logging.WarnWithContext(c.logger, "cache bucket load failed; starting empty", "cache_load_failed",
			logging.Bucket(bucket),
			logging.Error(err))
		return state
	}

	entries, dropped, err := decodeBucket(data)
	if err != nil {
		corrupt := services.Wrap(services.ErrCacheCorruption, "cache", "load", name, err)
		logging.WarnWithContext(c.logger, "corrupt cache bucket reset", "cache_corruption",
			logging.Bucket(bucket),
			logging.Error(corrupt),
			logging.Int("bytes", len(data)),
			logging.String(logging.FieldErrorHint, "no action needed; the bucket is rebuilt on demand"),
			logging.String(logging.FieldImpact, "cached responses in this bucket are refetched"))
		if delErr := c.store.Delete(ctx, name); delErr != nil {
			c.logger.Debug("delete corrupt bucket failed", logging.Error(delErr))
		}
		return state
	}
	if dropped > 0 {
		logging.WarnWithContext(c.logger, "dropped malformed cache entries", "cache_corruption",
			logging.Bucket(bucket),
			logging.Int("dropped", dropped),
			logging.String(logging.FieldErrorHint, "no action needed"),
			logging.String(logging.FieldImpact, "affected entries are refetched"))
	}
	state.entries = entries
	return state
}

func (c *Cache) expired(e entry, bucket Bucket) bool {
	return c.now().Sub(e.StoredAt) > c.Policy(bucket).Expiration
}

// persistLocked enforces the size cap and writes bucket to the store. Quota
// failures trigger an emergency trim to recent entries, then drop the
// bucket. Callers hold c.mu.
func (c *Cache) persistLocked(ctx context.Context, bucket Bucket) {
	state := c.buckets[bucket]
	name := c.RecordName(bucket)
	policy := c.Policy(bucket)

	if len(state.entries) == 0 {
		if err := c.store.Delete(ctx, name); err != nil {
			c.warnPersist(bucket, err)
		}
		return
	}

	data, err := encodeBucket(state.entries)
	if err != nil {
		c.warnPersist(bucket, err)
		return
	}
	if evicted := evictForSize(state.entries, len(data), policy.MaxBytes); len(evicted) > 0 {
		c.logger.Debug("evicted largest entries",
			logging.Bucket(bucket),
			logging.Int("evicted", len(evicted)),
			logging.Int("bytes_before", len(data)),
			logging.Int("max_bytes", policy.MaxBytes))
		if data, err = encodeBucket(state.entries); err != nil {
			c.warnPersist(bucket, err)
			return
		}
	}

	err = c.store.Save(ctx, name, data)
	if err == nil {
		return
	}
	if !errors.Is(err, blobstore.ErrQuotaExceeded) {
		c.warnPersist(bucket, err)
		return
	}

	removed := keepSince(state.entries, c.now().Add(-c.emergencyWindow))
	logging.WarnWithContext(c.logger, "storage quota exceeded; trimming bucket to recent entries", "cache_quota",
		logging.Bucket(bucket),
		logging.Int("removed", removed),
		logging.Int("kept", len(state.entries)),
		logging.Error(services.Wrap(services.ErrQuotaExceeded, "cache", "persist", name, err)))
	if len(state.entries) > 0 {
		if data, err = encodeBucket(state.entries); err == nil {
			if err = c.store.Save(ctx, name, data); err == nil {
				return
			}
		}
	}

	state.entries = make(map[string]entry)
	if delErr := c.store.Delete(ctx, name); delErr != nil {
		c.logger.Debug("delete dropped bucket failed", logging.Error(delErr))
	}
	logging.WarnWithContext(c.logger, "cache bucket dropped after quota failure", "cache_quota",
		logging.Bucket(bucket),
		logging.String(logging.FieldErrorHint, "raise cache.quota_bytes"),
		logging.String(logging.FieldImpact, "every response in this bucket is refetched"))
}

func (c *Cache) dropLocked(ctx context.Context, bucket Bucket) {
	state := c.buckets[bucket]
	state.entries = make(map[string]entry)
	state.loaded = true
	if err := c.store.Delete(ctx, c.RecordName(bucket)); err != nil {
		c.warnPersist(bucket, err)
	}
}

func (c *Cache) warnPersist(bucket Bucket, err error) {
	logging.WarnWithContext(c.logger, "cache bucket not persisted", "cache_persist_failed",
		logging.Bucket(bucket),
		logging.Error(err))
}

// BucketStats describes one bucket.
type BucketStats struct {
	Bucket  Bucket
	Record  string
	Items   int
	Bytes   int
	Expired int
	Oldest  time.Time
	Newest  time.Time
	Hits    uint64
	Misses  uint64
	Policy  Policy
}

// Stats loads every bucket and reports its size and age range.
func (c *Cache) Stats(ctx context.Context) []BucketStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make([]BucketStats, 0, bucketCount)
	for _, bucket := range Buckets() {
		state := c.bucketLocked(ctx, bucket)
		s := BucketStats{
			Bucket: bucket,
			Record: c.RecordName(bucket),
			Items:  len(state.entries),
			Hits:   state.hits,
			Misses: state.misses,
			Policy: c.Policy(bucket),
		}
		if len(state.entries) > 0 {
			if data, err := encodeBucket(state.entries); err == nil {
				s.Bytes = len(data)
			}
		}
		for _, e := range state.entries {
			if c.expired(e, bucket) {
				s.Expired++
			}
			if s.Oldest.IsZero() || e.StoredAt.Before(s.Oldest) {
				s.Oldest = e.StoredAt
			}
			if e.StoredAt.After(s.Newest) {
				s.Newest = e.StoredAt
			}
		}
		stats = append(stats, s)
	}
	return stats
}

// Keys returns the live keys of bucket in storage order, oldest first.
func (c *Cache) Keys(ctx context.Context, bucket Bucket) []string {
	if !bucket.valid() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.bucketLocked(ctx, bucket)
	sorted := sortedByAge(state.entries)
	keys := make([]string, 0, len(sorted))
	for _, item := range sorted {
		keys = append(keys, item.key)
	}
	return keys
}

func (s BucketStats) String() string {
	return fmt.Sprintf("%s: %d items, %d bytes", s.Bucket, s.Items, s.Bytes)
}
