package registry

import (
	"context"
	"sort"
	"time"

	"assetregistry/pkg/domain"
)

// Service exposes the registry operations over a persistent store: dated
// lifecycle mutations and point-in-time status queries. A Service is safe for
// concurrent use when its store is.
type Service struct {
	store   domain.PersistentStore
	logger  domain.Logger
	metrics MetricsRecorder
	tracer  Tracer
	now     func() time.Time
}

// ServiceOption customises a Service at construction time.
type ServiceOption func(*Service)

// WithLogger installs a structured logger. Defaults to a no-op logger.
func WithLogger(logger domain.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs a metrics recorder observing every operation.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer installs a tracer spanning every operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the wall clock used to default unset query dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  domain.NopLogger{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	return err
}

func (s *Service) resolveAsOf(asOf domain.CalendarDate) domain.CalendarDate {
	if asOf.IsZero() {
		return domain.DateOf(s.now())
	}
	return asOf
}

// RecordAcquisition appends an acquisition event for the asset, creating its
// record on first sight, and persists the registry.
func (s *Service) RecordAcquisition(ctx context.Context, assetID, assigneeID, division string, date domain.CalendarDate) error {
	return s.instrument(ctx, "record_acquisition", func(ctx context.Context) error {
		if date.IsZero() {
			return domain.InvalidDateError{Input: ""}
		}
		err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.AppendAcquisition(assetID, assigneeID, division, date)
		})
		if err != nil {
			return err
		}
		s.logger.Info("acquisition recorded",
			"asset_id", domain.NormalizeAssetID(assetID),
			"assignee_id", assigneeID,
			"date", date.String(),
		)
		return nil
	})
}

// RecordDisposal appends a disposal event for a known asset and persists the
// registry. Unrecognized reasons coerce to ReasonOther with a logged warning
// rather than failing the call.
func (s *Service) RecordDisposal(ctx context.Context, assetID string, date domain.CalendarDate, reason, notes string) error {
	return s.instrument(ctx, "record_disposal", func(ctx context.Context) error {
		if date.IsZero() {
			return domain.InvalidDateError{Input: ""}
		}
		parsed, known := domain.ParseDisposalReason(reason)
		if !known {
			s.logger.Warn("unrecognized disposal reason coerced",
				"asset_id", domain.NormalizeAssetID(assetID),
				"reason", reason,
				"coerced_to", string(parsed),
			)
		}
		err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.AppendDisposal(assetID, date, parsed, notes)
		})
		if err != nil {
			return err
		}
		s.logger.Info("disposal recorded",
			"asset_id", domain.NormalizeAssetID(assetID),
			"reason", string(parsed),
			"date", date.String(),
		)
		return nil
	})
}

// Status reports the lifecycle status of an asset as of a date. Assets with no
// resolvable events on or before the date are Unknown. A zero date means today.
func (s *Service) Status(assetID string, asOf domain.CalendarDate) domain.Status {
	status := domain.StatusUnknown
	_ = s.instrument(context.Background(), "status", func(context.Context) error {
		rec, ok := s.store.GetRecord(assetID)
		if !ok {
			return nil
		}
		status = statusOn(rec, s.resolveAsOf(asOf))
		return nil
	})
	return status
}

// CurrentAssignee returns the assignee holding the asset while it is active as
// of the date. The second return is false for disposed or unknown assets.
func (s *Service) CurrentAssignee(assetID string, asOf domain.CalendarDate) (string, bool) {
	var (
		assignee string
		ok       bool
	)
	_ = s.instrument(context.Background(), "current_assignee", func(context.Context) error {
		rec, found := s.store.GetRecord(assetID)
		if !found {
			return nil
		}
		assignee, ok = assigneeOn(rec, s.resolveAsOf(asOf))
		return nil
	})
	return assignee, ok
}

// ActiveAssets returns the sorted normalized ids of every asset active as of
// the date.
func (s *Service) ActiveAssets(asOf domain.CalendarDate) []string {
	var active []string
	_ = s.instrument(context.Background(), "active_assets", func(context.Context) error {
		resolved := s.resolveAsOf(asOf)
		return s.store.View(context.Background(), func(view domain.RegistryView) error {
			for _, id := range view.AssetIDs() {
				rec, ok := view.FindRecord(id)
				if !ok {
					continue
				}
				if statusOn(rec, resolved) == domain.StatusActive {
					active = append(active, id)
				}
			}
			return nil
		})
	})
	sort.Strings(active)
	return active
}

// AssetDetails returns the asset's full event history. Unknown assets yield an
// empty record, never an error.
func (s *Service) AssetDetails(assetID string) domain.AssetRecord {
	var rec domain.AssetRecord
	_ = s.instrument(context.Background(), "asset_details", func(context.Context) error {
		found, ok := s.store.GetRecord(assetID)
		if ok {
			rec = found
		}
		return nil
	})
	return rec
}

// ValidatePairing reports whether the assignee holds the asset as of the date.
func (s *Service) ValidatePairing(assetID, assigneeID string, asOf domain.CalendarDate) bool {
	current, ok := s.CurrentAssignee(assetID, asOf)
	if !ok {
		return false
	}
	return current == assigneeID
}
