// Package sqlite persists the registry snapshot to an embedded SQLite
// file. It keeps the same backup-before-write contract as the file driver,
// with backups appended to a dedicated table instead of an archive
// directory.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	sqldocs "assetregistry/docs/schema/sql"
	"assetregistry/internal/infra/persistence/memory"
	"assetregistry/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const registryBucket = "registry"

// Store snapshots the in-memory registry into SQLite after every
// successful transaction.
type Store struct {
	*memory.Store
	db     *sql.DB
	mu     sync.Mutex
	path   string
	logger domain.Logger
	nowFn  func() time.Time
}

// Option configures optional store collaborators.
type Option func(*Store)

// WithLogger injects the logger used for corruption recovery events.
func WithLogger(logger domain.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore opens a snapshotting SQLite-backed registry store.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = "registry.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// snapshot tables come from the canonical docs bundle so the documented
	// schema and the runtime schema cannot drift
	for _, ddl := range sqldocs.Statements(sqldocs.SQLite) {
		if _, err := db.Exec(ddl); err != nil {
			return nil, fmt.Errorf("ensure tables: %w", err)
		}
	}
	s := &Store{
		Store:  memory.NewStore(),
		db:     db,
		path:   path,
		logger: domain.NopLogger{},
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, registryBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return s.quarantine(payload, err)
	}
	s.ImportState(snapshot)
	return nil
}

// quarantine moves an undecodable snapshot into the backups table and
// starts the registry empty.
func (s *Store) quarantine(payload []byte, cause error) error {
	now := s.nowFn().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(`INSERT INTO backups(created_at, reason, payload) VALUES(?,?,?)`,
		now, "corrupted", payload); err != nil {
		return fmt.Errorf("quarantine snapshot: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM state WHERE bucket = ?`, registryBucket); err != nil {
		return fmt.Errorf("clear corrupted state: %w", err)
	}
	s.logger.Warn("stored snapshot undecodable, starting empty registry",
		"path", s.path, "error", cause)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.ExportState())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	// backup-before-write: archive the previous payload in the same
	// transaction that replaces it
	if _, err := tx.Exec(`INSERT INTO backups(created_at, reason, payload)
		SELECT ?, 'autosave', payload FROM state WHERE bucket = ?`,
		s.nowFn().Format(time.RFC3339Nano), registryBucket); err != nil {
		retErr = fmt.Errorf("backup previous state: %w", err)
		return retErr
	}
	if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?)
		ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		registryBucket, data); err != nil {
		retErr = fmt.Errorf("upsert state: %w", err)
		return retErr
	}
	return tx.Commit()
}

// RunInTransaction applies fn in memory, then snapshots state to SQLite if
// successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		return domain.PersistError{Op: "sqlite snapshot", Err: err}
	}
	return nil
}

// BackupInfo describes one archived snapshot row.
type BackupInfo struct {
	ID        int64
	CreatedAt string
	Reason    string
	Size      int64
}

// Backups lists archived snapshots, oldest first.
func (s *Store) Backups(ctx context.Context) ([]BackupInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, reason, length(payload) FROM backups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select backups: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []BackupInfo
	for rows.Next() {
		var info BackupInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.Reason, &info.Size); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
