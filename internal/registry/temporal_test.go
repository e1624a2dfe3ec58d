package registry

import (
	"testing"
	"time"

	"assetregistry/pkg/domain"
)

func mustDate(t *testing.T, value string) domain.CalendarDate {
	t.Helper()
	d, err := domain.ParseCalendarDate(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return d
}

func acq(t *testing.T, date string, assignee string, recorded time.Time) domain.AcquisitionEvent {
	t.Helper()
	return domain.AcquisitionEvent{Date: mustDate(t, date), AssigneeID: assignee, RecordedAt: recorded}
}

func disp(t *testing.T, date string, reason domain.DisposalReason, recorded time.Time) domain.DisposalEvent {
	t.Helper()
	return domain.DisposalEvent{Date: mustDate(t, date), Reason: reason, RecordedAt: recorded}
}

func TestStatusOn_NoEventsIsUnknown(t *testing.T) {
	rec := domain.AssetRecord{}
	if got := statusOn(rec, mustDate(t, "2025-06-01")); got != domain.StatusUnknown {
		t.Fatalf("status = %v, want unknown", got)
	}
}

func TestStatusOn_BeforeFirstAcquisitionIsUnknown(t *testing.T) {
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{acq(t, "2025-03-01", "D1", time.Time{})},
	}
	if got := statusOn(rec, mustDate(t, "2025-02-28")); got != domain.StatusUnknown {
		t.Fatalf("status before acquisition = %v, want unknown", got)
	}
	if got := statusOn(rec, mustDate(t, "2025-03-01")); got != domain.StatusActive {
		t.Fatalf("status on acquisition date = %v, want active", got)
	}
}

func TestStatusOn_DisposalBoundary(t *testing.T) {
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{acq(t, "2025-01-01", "D1", time.Time{})},
		Disposals:    []domain.DisposalEvent{disp(t, "2025-04-30", domain.ReasonSold, time.Time{})},
	}
	cases := []struct {
		date string
		want domain.Status
	}{
		{"2024-12-31", domain.StatusUnknown},
		{"2025-01-01", domain.StatusActive},
		{"2025-04-29", domain.StatusActive},
		{"2025-04-30", domain.StatusDisposed},
		{"2025-12-31", domain.StatusDisposed},
	}
	for _, tc := range cases {
		if got := statusOn(rec, mustDate(t, tc.date)); got != tc.want {
			t.Fatalf("status as of %s = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestStatusOn_ReacquisitionAfterDisposal(t *testing.T) {
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{
			acq(t, "2025-01-01", "D1", time.Time{}),
			acq(t, "2025-06-01", "D2", time.Time{}),
		},
		Disposals: []domain.DisposalEvent{disp(t, "2025-03-01", domain.ReasonMaintenance, time.Time{})},
	}
	if got := statusOn(rec, mustDate(t, "2025-04-01")); got != domain.StatusDisposed {
		t.Fatalf("status between disposal and reacquisition = %v, want disposed", got)
	}
	if got := statusOn(rec, mustDate(t, "2025-06-01")); got != domain.StatusActive {
		t.Fatalf("status after reacquisition = %v, want active", got)
	}
	if who, ok := assigneeOn(rec, mustDate(t, "2025-07-01")); !ok || who != "D2" {
		t.Fatalf("assignee after reacquisition = %q ok=%v, want D2", who, ok)
	}
}

func TestStatusOn_DisposalWinsSameDateAsAcquisition(t *testing.T) {
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{acq(t, "2025-05-01", "D1", time.Time{})},
		Disposals:    []domain.DisposalEvent{disp(t, "2025-05-01", domain.ReasonScrapped, time.Time{})},
	}
	if got := statusOn(rec, mustDate(t, "2025-05-01")); got != domain.StatusDisposed {
		t.Fatalf("same-date precedence = %v, want disposed", got)
	}
}

func TestLatestDisposalOn_SameDateTieBreaksByRecordingStamp(t *testing.T) {
	earlier := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2025, 5, 1, 17, 0, 0, 0, time.UTC)
	rec := domain.AssetRecord{
		Disposals: []domain.DisposalEvent{
			disp(t, "2025-05-01", domain.ReasonSold, later),
			disp(t, "2025-05-01", domain.ReasonDamaged, earlier),
		},
	}
	got, ok := latestDisposalOn(rec, mustDate(t, "2025-05-01"))
	if !ok || got.Reason != domain.ReasonSold {
		t.Fatalf("tie-break picked %v ok=%v, want sold (latest recording)", got.Reason, ok)
	}
}

func TestLatestAcquisitionOn_EqualStampsPreferLaterAppended(t *testing.T) {
	stamp := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{
			acq(t, "2025-05-01", "D1", stamp),
			acq(t, "2025-05-01", "D2", stamp),
		},
	}
	got, ok := latestAcquisitionOn(rec, mustDate(t, "2025-05-01"))
	if !ok || got.AssigneeID != "D2" {
		t.Fatalf("equal-stamp tie picked %q ok=%v, want D2", got.AssigneeID, ok)
	}
}

func TestAssigneeOn_NoAssigneeForDisposedAsset(t *testing.T) {
	rec := domain.AssetRecord{
		Acquisitions: []domain.AcquisitionEvent{acq(t, "2025-01-01", "D1", time.Time{})},
		Disposals:    []domain.DisposalEvent{disp(t, "2025-02-01", domain.ReasonSold, time.Time{})},
	}
	if who, ok := assigneeOn(rec, mustDate(t, "2025-03-01")); ok {
		t.Fatalf("disposed asset reported assignee %q", who)
	}
}
