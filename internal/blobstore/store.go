package blobstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that no record exists under the requested name.
	ErrNotFound = errors.New("blob not found")
	// ErrQuotaExceeded reports that a save would exceed the storage budget.
	ErrQuotaExceeded = errors.New("blob storage quota exceeded")
)

// Store persists opaque named records. Implementations are safe for
// concurrent use.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Usage sums the size of every record in store.
func Usage(ctx context.Context, store Store) (int64, error) {
	names, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, name := range names {
		data, err := store.Load(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += int64(len(data))
	}
	return total, nil
}
