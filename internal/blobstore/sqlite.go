package blobstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"filmtrack/internal/fileutil"
	"filmtrack/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type record struct {
	Name      string `db:"name"`
	Payload   []byte `db:"payload"`
	UpdatedAt string `db:"updated_at"`
}

// SQLiteStore keeps records as rows of a single SQLite table.
type SQLiteStore struct {
	db     *sqlx.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite store: path is required")
	}
	if err := fileutil.EnsureWritableDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	lock, err := acquireLock(path + ".lock")
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "blobstore"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}
	store.logger.Debug("sqlite store opened", logging.String("path", path))
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.GetContext(ctx, &tableExists,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.GetContext(ctx, &version, "SELECT version FROM schema_version LIMIT 1"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild the cache)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, "SELECT payload FROM cache_records WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: load %s: %w", name, err)
	}
	return payload, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	row := record{
		Name:      name,
		Payload:   data,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO cache_records (name, payload, updated_at)
         VALUES (:name, :payload, :updated_at)
         ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		row)
	if err != nil {
		return fmt.Errorf("sqlite store: save %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_records WHERE name = ?", name); err != nil {
		return fmt.Errorf("sqlite store: delete %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT name FROM cache_records ORDER BY name"); err != nil {
		return nil, fmt.Errorf("sqlite store: list: %w", err)
	}
	return names, nil
}

// Close closes the database and releases the ownership lock.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}
