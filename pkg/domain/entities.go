// Package domain defines the core registry entities, value types, and
// persistence primitives used by assetregistry.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the on-disk document version written by every persist.
const SchemaVersion = "1.0"

// Status describes the resolved state of an asset as of a query date.
type Status string

// Resolved asset states returned by temporal queries.
const (
	// StatusActive indicates the asset was in service on the query date.
	StatusActive Status = "active"
	// StatusDisposed indicates the asset had left service by the query date.
	StatusDisposed Status = "disposed"
	// StatusUnknown indicates no event on or before the query date.
	StatusUnknown Status = "unknown"
)

// DisposalReason classifies why an asset left active service.
type DisposalReason string

// Canonical disposal reasons. Unrecognized input coerces to ReasonOther.
const (
	ReasonSold        DisposalReason = "sold"
	ReasonScrapped    DisposalReason = "scrapped"
	ReasonTransferred DisposalReason = "transferred"
	ReasonStolen      DisposalReason = "stolen"
	ReasonDamaged     DisposalReason = "damaged"
	ReasonMaintenance DisposalReason = "maintenance"
	ReasonEndOfLease  DisposalReason = "end_of_lease"
	ReasonOther       DisposalReason = "other"
)

var disposalReasons = map[DisposalReason]struct{}{
	ReasonSold:        {},
	ReasonScrapped:    {},
	ReasonTransferred: {},
	ReasonStolen:      {},
	ReasonDamaged:     {},
	ReasonMaintenance: {},
	ReasonEndOfLease:  {},
	ReasonOther:       {},
}

// ParseDisposalReason maps free-form input onto the closed reason enum.
// Unrecognized values coerce to ReasonOther and report ok=false so the
// caller can log the coercion without failing the operation.
func ParseDisposalReason(input string) (DisposalReason, bool) {
	reason := DisposalReason(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := disposalReasons[reason]; ok {
		return reason, true
	}
	return ReasonOther, false
}

// NormalizeAssetID canonicalizes an asset identifier. Inputs differing only
// in case or surrounding whitespace resolve to the same registry key.
func NormalizeAssetID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// AcquisitionEvent records an asset entering active service under an
// assignee and division as of a business date.
type AcquisitionEvent struct {
	Date CalendarDate `json:"date"`
	// AssigneeID keeps the historical driver_id wire name for
	// compatibility with previously persisted documents.
	AssigneeID string    `json:"driver_id"`
	Division   string    `json:"division"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DisposalEvent records an asset leaving active service as of a business
// date, with a classified reason.
type DisposalEvent struct {
	Date       CalendarDate   `json:"date"`
	Reason     DisposalReason `json:"reason"`
	Notes      string         `json:"notes,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// AssetRecord holds the full append-only event history for one asset.
// Both sequences preserve insertion order; chronological resolution
// happens only at query time.
type AssetRecord struct {
	Acquisitions []AcquisitionEvent `json:"acquisitions"`
	Disposals    []DisposalEvent    `json:"disposals"`
}

// Clone returns a deep copy of the record so callers can never mutate
// committed store state through a returned value.
func (r AssetRecord) Clone() AssetRecord {
	cp := AssetRecord{}
	cp.Acquisitions = append([]AcquisitionEvent(nil), r.Acquisitions...)
	cp.Disposals = append([]DisposalEvent(nil), r.Disposals...)
	return cp
}

// Empty reports whether the record holds no events.
func (r AssetRecord) Empty() bool {
	return len(r.Acquisitions) == 0 && len(r.Disposals) == 0
}

// Metadata describes the registry document itself.
type Metadata struct {
	Created      time.Time `json:"created"`
	Version      string    `json:"version"`
	LastModified time.Time `json:"last_modified"`
}

// Snapshot is the serializable representation of the whole registry. It is
// the interchange document written by every persist and read at load.
type Snapshot struct {
	Metadata Metadata               `json:"metadata"`
	Assets   map[string]AssetRecord `json:"assets"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := Snapshot{Metadata: s.Metadata, Assets: make(map[string]AssetRecord, len(s.Assets))}
	for id, rec := range s.Assets {
		cp.Assets[id] = rec.Clone()
	}
	return cp
}

// Logger is the minimal structured logging surface consumed by the
// registry layers. Args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards all log output. It is the default when no logger is
// injected.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, ...any) {}

// String implements fmt.Stringer for Status values in log output.
func (s Status) String() string { return string(s) }

// Valid reports whether the reason is a member of the closed enum.
func (r DisposalReason) Valid() bool {
	_, ok := disposalReasons[r]
	return ok
}

func (r DisposalReason) String() string { return string(r) }

// GoString aids debugging output for records.
func (r AssetRecord) GoString() string {
	return fmt.Sprintf("AssetRecord{acquisitions:%d disposals:%d}", len(r.Acquisitions), len(r.Disposals))
}
