// Package postgres provides a Postgres-backed registry store that mirrors
// the in-memory semantics, snapshotting the whole registry as JSONB after
// every successful transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	sqldocs "assetregistry/docs/schema/sql"
	"assetregistry/internal/infra/persistence/memory"
	"assetregistry/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Default DSN keeps parity with OpenPersistentStore defaults while
	// allowing overrides via env.
	defaultDSN     = "postgres://localhost/assetregistry?sslmode=disable"
	registryBucket = "registry"
)

var sqlOpen = sql.Open

// Store persists registry snapshots to Postgres while reusing the
// in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db     *sql.DB
	mu     sync.Mutex
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

// NewStore opens a Postgres-backed store using the provided DSN (falls
// back to defaultDSN). It ensures the snapshot tables exist and hydrates
// the in-memory registry from any existing snapshot.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sqlOpen(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTables(ctx, db); err != nil {
		return nil, err
	}
	s := &Store{
		Store:  memory.NewStore(),
		db:     db,
		logger: domain.NopLogger{},
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureTables executes the canonical docs DDL bundle so the documented
// schema and the runtime schema cannot drift.
func ensureTables(ctx context.Context, db *sql.DB) error {
	for _, ddl := range sqldocs.Statements(sqldocs.Postgres) {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, registryBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return s.quarantine(ctx, payload, err)
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) quarantine(ctx context.Context, payload []byte, cause error) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO backups(created_at, reason, payload) VALUES($1,'corrupted',$2)`,
		s.nowFn(), payload); err != nil {
		return fmt.Errorf("quarantine snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, registryBucket); err != nil {
		return fmt.Errorf("clear corrupted state: %w", err)
	}
	s.logger.Warn("stored snapshot undecodable, starting empty registry", "error", cause)
	return nil
}

func (s *Store) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.ExportState())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO backups(created_at, reason, payload)
		SELECT $1, 'autosave', payload FROM state WHERE bucket = $2`,
		s.nowFn(), registryBucket); err != nil {
		retErr = fmt.Errorf("backup previous state: %w", err)
		return retErr
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2)
		ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		registryBucket, data); err != nil {
		retErr = fmt.Errorf("upsert state: %w", err)
		return retErr
	}
	return tx.Commit()
}

// RunInTransaction applies fn in memory, then snapshots to Postgres if
// successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return domain.PersistError{Op: "postgres snapshot", Err: err}
	}
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
