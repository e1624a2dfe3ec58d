// Package file persists the registry as a single JSON document, the
// default interchange format. Every successful transaction snapshots the
// previous on-disk state into the archive before atomically replacing the
// primary file. The whole-file rewrite is a deliberate simplicity and
// durability trade-off at the target scale (hundreds to low thousands of
// assets), not an oversight.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"assetregistry/internal/infra/archive"
	"assetregistry/internal/infra/persistence/memory"
	"assetregistry/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store keeps the registry in memory and mirrors it to a JSON document
// after every successful transaction.
type Store struct {
	*memory.Store
	mu      sync.Mutex
	path    string
	backups archive.Store
	logger  domain.Logger
	nowFn   func() time.Time
}

// Option configures optional store collaborators.
type Option func(*Store)

// WithLogger injects the logger used for corruption and recovery events.
func WithLogger(logger domain.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock used for backup keys and event
// stamps. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
			s.Store.SetNowFunc(now)
		}
	}
}

// NewStore opens (or initializes) the registry document at path, archiving
// backups through the supplied archive store. A primary file that fails to
// parse is quarantined into the archive with reason "corrupted" and the
// registry starts empty; availability wins over recovery, and the
// unreadable bytes stay on disk for manual forensics.
func NewStore(path string, backups archive.Store, opts ...Option) (*Store, error) {
	if path == "" {
		path = "registry.json"
	}
	if backups == nil {
		return nil, fmt.Errorf("archive store required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	s := &Store{
		Store:   memory.NewStore(),
		path:    path,
		backups: backups,
		logger:  domain.NopLogger{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// load hydrates the in-memory registry from the primary file.
func (s *Store) load(ctx context.Context) error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read primary store: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.quarantine(ctx, raw, domain.CorruptionError{Path: s.path, Err: err})
		return nil
	}
	s.ImportState(snapshot)
	return nil
}

// quarantine copies unreadable primary bytes into the archive and leaves
// the registry empty. Logged as a data-loss event, never fatal to startup.
func (s *Store) quarantine(ctx context.Context, raw []byte, cause domain.CorruptionError) {
	key := archive.Key(s.nowFn(), archive.ReasonCorrupted)
	_, err := s.backups.Put(ctx, key, bytes.NewReader(raw), archive.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"reason": archive.ReasonCorrupted, "source": s.path},
	})
	if err != nil {
		s.logger.Error("quarantine of corrupted store failed", "path", s.path, "error", err)
	}
	s.logger.Warn("primary store unreadable, starting empty registry",
		"path", s.path, "backup_key", key, "error", cause.Err)
}

// RunInTransaction applies fn in memory, then archives the previous
// on-disk state and rewrites the primary document. The store-level mutex
// keeps the backup-then-replace cycle exclusive across writers.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		// The in-memory registry keeps the mutation; the caller decides
		// whether to retry the persist or fail the operation end to end.
		return domain.PersistError{Op: "registry document", Err: err}
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(s.ExportState(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	prev, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		key := archive.Key(s.nowFn(), archive.ReasonAutosave)
		if _, err := s.backups.Put(ctx, key, bytes.NewReader(prev), archive.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"reason": archive.ReasonAutosave, "source": s.path},
		}); err != nil {
			return fmt.Errorf("backup before write: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// first persist, nothing to back up
	default:
		return fmt.Errorf("read previous state: %w", err)
	}
	// write-to-temp-then-rename so a partial write never replaces the
	// primary file
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".registry-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Backups lists archived registry documents, oldest key first.
func (s *Store) Backups(ctx context.Context) ([]archive.Info, error) {
	return s.backups.List(ctx, "")
}

// Path returns the primary document location.
func (s *Store) Path() string { return s.path }

// Archive exposes the backing archive store for operator tooling.
func (s *Store) Archive() archive.Store { return s.backups }
