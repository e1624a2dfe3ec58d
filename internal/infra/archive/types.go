// Package archive stores registry backups. Every persist snapshots the
// previous on-disk state into the archive before overwriting, and load-time
// corruption quarantines the unreadable document here for manual recovery.
// Entries are create-only and accumulate until externally pruned.
package archive

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete archive backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// Reason tags recorded with each archived document.
const (
	ReasonAutosave  = "autosave"  // routine pre-overwrite backup
	ReasonCorrupted = "corrupted" // quarantined unreadable primary store
)

// Key builds the timestamped, reason-tagged name for an archived document.
// Nanosecond precision keeps keys unique under rapid successive persists.
func Key(ts time.Time, reason string) string {
	return fmt.Sprintf("%s_%s.json", ts.UTC().Format("20060102T150405.000000000Z"), reason)
}

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // user metadata (small, flat key-value)
}

// Info describes a stored archive entry.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the interface archive backends implement. Semantics mirror a
// minimal subset of S3 so the S3 adapter is nearly 1:1 while the
// filesystem adapter emulates them.
type Store interface {
	// Put stores a new entry at key. MUST fail if the key already exists;
	// archived backups are never overwritten.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the entry contents and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes an entry (external pruning). Returns (false, nil) if
	// not found.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns entries whose key has the provided prefix, ordered by
	// key ascending.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}
