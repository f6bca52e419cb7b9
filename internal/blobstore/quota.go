package blobstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// QuotaStore enforces a total byte budget across every record of the wrapped
// store.
type QuotaStore struct {
	inner    Store
	maxBytes int64

	mu     sync.Mutex
	sizes  map[string]int64
	total  int64
	primed bool
}

// WithQuota wraps store so that saves pushing the total size above maxBytes
// fail with ErrQuotaExceeded. A non-positive maxBytes returns store unchanged.
func WithQuota(store Store, maxBytes int64) Store {
	if maxBytes <= 0 {
		return store
	}
	return &QuotaStore{inner: store, maxBytes: maxBytes}
}

// prime loads current sizes once. Callers hold q.mu.
func (q *QuotaStore) prime(ctx context.Context) error {
	if q.primed {
		return nil
	}
	names, err := q.inner.List(ctx)
	if err != nil {
		return err
	}
	sizes := make(map[string]int64, len(names))
	var total int64
	for _, name := range names {
		data, err := q.inner.Load(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		sizes[name] = int64(len(data))
		total += int64(len(data))
	}
	q.sizes, q.total, q.primed = sizes, total, true
	return nil
}

func (q *QuotaStore) Load(ctx context.Context, name string) ([]byte, error) {
	return q.inner.Load(ctx, name)
}

func (q *QuotaStore) Save(ctx context.Context, name string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.prime(ctx); err != nil {
		return err
	}
	size := int64(len(data))
	projected := q.total - q.sizes[name] + size
	if projected > q.maxBytes {
		return fmt.Errorf("save %s (%d bytes, %d/%d in use): %w", name, size, q.total, q.maxBytes, ErrQuotaExceeded)
	}
	if err := q.inner.Save(ctx, name, data); err != nil {
		return err
	}
	q.total = projected
	q.sizes[name] = size
	return nil
}

func (q *QuotaStore) Delete(ctx context.Context, name string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.inner.Delete(ctx, name); err != nil {
		return err
	}
	if q.primed {
		q.total -= q.sizes[name]
		delete(q.sizes, name)
	}
	return nil
}

func (q *QuotaStore) List(ctx context.Context) ([]string, error) {
	return q.inner.List(ctx)
}

// Used returns the bytes currently counted against the budget.
func (q *QuotaStore) Used(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.prime(ctx); err != nil {
		return 0, err
	}
	return q.total, nil
}

// Limit returns the configured budget.
func (q *QuotaStore) Limit() int64 { return q.maxBytes }

func (q *QuotaStore) Close() error {
	return q.inner.Close()
}
