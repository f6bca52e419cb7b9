package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"filmtrack/internal/fileutil"
	"filmtrack/internal/logging"
	"filmtrack/internal/textutil"
)

const (
	recordExt    = ".json"
	lockFileName = ".filmtrack.lock"
	// maxFileName is the common 255-byte file name limit.
	maxFileName = 255
)

// FileStore keeps one file per record inside a directory owned by a single
// process.
type FileStore struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.RWMutex
}

// OpenFileStore prepares dir and takes its ownership lock.
func OpenFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := fileutil.EnsureWritableDir(dir); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	lock, err := acquireLock(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, err
	}
	store := &FileStore{
		dir:    dir,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "blobstore"),
	}
	store.logger.Debug("file store opened", logging.String("dir", dir))
	return store, nil
}

// path maps a record name to its file. The escaping is reversible so List
// reports exactly the names callers saved.
func (f *FileStore) path(name string) (string, error) {
	file := textutil.EscapeToken(name) + recordExt
	if name == "" || len(file) > maxFileName {
		return "", fmt.Errorf("file store: record name %q does not fit a file name", name)
	}
	return filepath.Join(f.dir, file), nil
}

func (f *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	path, err := f.path(name)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", name, err)
	}
	return data, nil
}

func (f *FileStore) Save(_ context.Context, name string, data []byte) error {
	path, err := f.path(name)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("file store: save %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, name string) error {
	path, err := f.path(name)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file store: delete %s: %w", name, err)
	}
	return nil
}

// List returns the saved record names. Files whose names are not escaped
// record names are skipped.
func (f *FileStore) List(context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("file store: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		name, err := textutil.UnescapeToken(strings.TrimSuffix(entry.Name(), recordExt))
		if err != nil {
			f.logger.Debug("skipping foreign file in store directory", logging.String("file", entry.Name()))
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close releases the directory lock.
func (f *FileStore) Close() error {
	if f == nil || f.lock == nil {
		return nil
	}
	if err := f.lock.Unlock(); err != nil {
		f.logger.Warn("failed to release store lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the stale lock file if no other filmtrack process is running"),
			logging.String(logging.FieldImpact, "next open may report the store as busy"))
		return err
	}
	return nil
}

func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("store is in use by another process (lock %s)", path)
	}
	return lock, nil
}
