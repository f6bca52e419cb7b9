package testsupport

import (
	"testing"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/config"
	"filmtrack/internal/logging"
)

// MustOpenSQLiteStore opens the sqlite cache store named by cfg and registers
// cleanup.
func MustOpenSQLiteStore(t testing.TB, cfg *config.Config) *blobstore.SQLiteStore {
	t.Helper()

	store, err := blobstore.OpenSQLiteStore(cfg.Cache.Path, logging.NewNop())
	if err != nil {
		t.Fatalf("blobstore.OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenFileStore opens a file store under dir and registers cleanup.
func MustOpenFileStore(t testing.TB, dir string) *blobstore.FileStore {
	t.Helper()

	store, err := blobstore.OpenFileStore(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("blobstore.OpenFileStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
