package blobstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions holds connection settings for DialRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each record as a redis string under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	// owned reports whether Close should close client.
	owned bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of it.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: normalizePrefix(prefix)}
}

// DialRedis connects to redis, verifies the connection and returns a store
// that closes the client on Close.
func DialRedis(ctx context.Context, opts RedisOptions, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	store := NewRedisStore(client, prefix)
	store.owned = true
	return store, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "filmtrack:"
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

func (r *RedisStore) key(name string) string { return r.prefix + name }

func (r *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s: %w", name, err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := r.client.Set(ctx, r.key(name), data, 0).Err(); err != nil {
		return setError(name, err)
	}
	return nil
}

// setError wraps a failed SET, marking maxmemory rejections as
// ErrQuotaExceeded so the cache trims instead of failing the request.
func setError(name string, err error) error {
	if isOutOfMemory(err) {
		return fmt.Errorf("redis store: set %s: %w: %w", name, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("redis store: set %s: %w", name, err)
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.key(name)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis store: del %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis store: scan: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the client when the store created it.
func (r *RedisStore) Close() error {
	if r.owned && r.client != nil {
		return r.client.Close()
	}
	return nil
}

// isOutOfMemory matches the error redis returns when maxmemory is reached
// under the noeviction policy.
func isOutOfMemory(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}
