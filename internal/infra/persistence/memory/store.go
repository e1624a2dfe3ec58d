// Package memory provides the in-memory transactional registry store that
// durable drivers build upon. It lives under infra to keep domain
// dependencies one-way (domain -> nothing).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assetregistry/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	metadata domain.Metadata
	assets   map[string]domain.AssetRecord
}

func newMemoryState(now time.Time) memoryState {
	return memoryState{
		metadata: domain.Metadata{Created: now, Version: domain.SchemaVersion, LastModified: now},
		assets:   make(map[string]domain.AssetRecord),
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{metadata: s.metadata, assets: make(map[string]domain.AssetRecord, len(s.assets))}
	for id, rec := range s.assets {
		cloned.assets[id] = rec.Clone()
	}
	return cloned
}

// Store is an in-memory registry with copy-on-write transactions. It is the
// ephemeral driver and the transactional engine embedded by the durable
// drivers.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty registry with fresh metadata.
func NewStore() *Store {
	return NewStoreWithClock(nil)
}

// NewStoreWithClock constructs an empty registry whose metadata stamps and
// subsequent mutations share the supplied clock. A nil clock means UTC wall
// time.
func NewStoreWithClock(now func() time.Time) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		state: newMemoryState(now()),
		nowFn: now,
	}
}

// SetNowFunc overrides the wall clock used for recorded_at and
// last_modified stamps. Used by tests and embedding drivers.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

// Transaction applies mutations against a cloned state that is committed
// only when the transactional function succeeds.
type Transaction struct {
	state memoryState
	now   time.Time
	dirty bool
}

// AppendAcquisition records an asset entering service. The record is
// created on first acquisition; out-of-order effective dates are accepted.
func (tx *Transaction) AppendAcquisition(assetID, assigneeID, division string, date domain.CalendarDate) error {
	id := domain.NormalizeAssetID(assetID)
	if id == "" {
		return domain.InvalidAssetIDError{Input: assetID}
	}
	rec := tx.state.assets[id]
	rec.Acquisitions = append(rec.Acquisitions, domain.AcquisitionEvent{
		Date:       date,
		AssigneeID: assigneeID,
		Division:   division,
		RecordedAt: tx.now,
	})
	tx.state.assets[id] = rec
	tx.dirty = true
	return nil
}

// AppendDisposal records an asset leaving service. Disposal must reference
// a known asset.
func (tx *Transaction) AppendDisposal(assetID string, date domain.CalendarDate, reason domain.DisposalReason, notes string) error {
	id := domain.NormalizeAssetID(assetID)
	if id == "" {
		return domain.InvalidAssetIDError{Input: assetID}
	}
	rec, ok := tx.state.assets[id]
	if !ok {
		return domain.NotFoundError{AssetID: id}
	}
	if !reason.Valid() {
		reason = domain.ReasonOther
	}
	rec.Disposals = append(rec.Disposals, domain.DisposalEvent{
		Date:       date,
		Reason:     reason,
		Notes:      notes,
		RecordedAt: tx.now,
	})
	tx.state.assets[id] = rec
	tx.dirty = true
	return nil
}

// Snapshot exposes a read-only view of the transactional state.
func (tx *Transaction) Snapshot() domain.RegistryView {
	return registryView{state: &tx.state}
}

// RunInTransaction executes fn against a cloned state and commits it when
// fn succeeds. The exclusive lock spans the whole append cycle so no two
// writers interleave and no reader observes a partial record.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.dirty {
		tx.state.metadata.LastModified = tx.now
	}
	s.state = tx.state
	return nil
}

// View executes fn against a consistent read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(domain.RegistryView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(registryView{state: &snapshot})
}

// GetRecord returns the full event history for the normalized id. An empty
// record, not an error, is returned for unknown assets.
func (s *Store) GetRecord(assetID string) (domain.AssetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.assets[domain.NormalizeAssetID(assetID)]
	if !ok {
		return domain.AssetRecord{}, false
	}
	return rec.Clone(), true
}

// AssetIDs lists all known asset ids in sorted order.
func (s *Store) AssetIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.state.assets))
	for id := range s.state.assets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Metadata returns the registry document metadata.
func (s *Store) Metadata() domain.Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.metadata
}

// ExportState captures the committed state as a serializable snapshot.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{Metadata: s.state.metadata, Assets: make(map[string]domain.AssetRecord, len(s.state.assets))}
	for id, rec := range s.state.assets {
		snap.Assets[id] = rec.Clone()
	}
	return snap
}

// ImportState replaces the committed state with the snapshot, normalizing
// legacy documents on the way in: ids are re-normalized (entries that
// collide after normalization are merged by appending their events),
// unrecognized disposal reasons coerce to other, and missing metadata
// fields receive fresh defaults.
func (s *Store) ImportState(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	state := newMemoryState(now)
	if !snap.Metadata.Created.IsZero() {
		state.metadata.Created = snap.Metadata.Created
	}
	if snap.Metadata.Version != "" {
		state.metadata.Version = snap.Metadata.Version
	}
	if !snap.Metadata.LastModified.IsZero() {
		state.metadata.LastModified = snap.Metadata.LastModified
	}
	for rawID, rec := range snap.Assets {
		id := domain.NormalizeAssetID(rawID)
		if id == "" {
			continue
		}
		merged := state.assets[id]
		merged.Acquisitions = append(merged.Acquisitions, rec.Acquisitions...)
		for _, d := range rec.Disposals {
			if !d.Reason.Valid() {
				d.Reason = domain.ReasonOther
			}
			merged.Disposals = append(merged.Disposals, d)
		}
		state.assets[id] = merged
	}
	s.state = state
}

type registryView struct {
	state *memoryState
}

func (v registryView) AssetIDs() []string {
	out := make([]string, 0, len(v.state.assets))
	for id := range v.state.assets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (v registryView) FindRecord(assetID string) (domain.AssetRecord, bool) {
	rec, ok := v.state.assets[domain.NormalizeAssetID(assetID)]
	if !ok {
		return domain.AssetRecord{}, false
	}
	return rec.Clone(), true
}

func (v registryView) Metadata() domain.Metadata {
	return v.state.metadata
}
