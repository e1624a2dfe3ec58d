package domain

import "context"

// Transaction exposes the mutations a persistence implementation must
// support within an exclusive writer scope.
type Transaction interface {
	// AppendAcquisition normalizes the asset id, creates the record if
	// absent, and appends the event. Out-of-order effective dates are
	// permitted; ordering is resolved at query time.
	AppendAcquisition(assetID, assigneeID, division string, date CalendarDate) error
	// AppendDisposal appends a disposal event. It fails with
	// NotFoundError when the normalized id has no record.
	AppendDisposal(assetID string, date CalendarDate, reason DisposalReason, notes string) error
	// Snapshot exposes a read-only view of the transactional state.
	Snapshot() RegistryView
}

// RegistryView provides read-only access to a consistent snapshot of the
// registry for temporal queries.
type RegistryView interface {
	AssetIDs() []string
	FindRecord(assetID string) (AssetRecord, bool)
	Metadata() Metadata
}

// PersistentStore is a minimal abstraction over durable backends. Every
// successful transaction is followed by a full-state persist; the concrete
// driver decides how the snapshot and its backups are stored.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(RegistryView) error) error
	GetRecord(assetID string) (AssetRecord, bool)
	AssetIDs() []string
	Metadata() Metadata
}
