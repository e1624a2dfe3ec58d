package registry

import (
	"time"

	"assetregistry/pkg/domain"
)

// latestAcquisitionOn returns the acquisition event with the newest effective
// date on or before asOf. Equal effective dates resolve to the event with the
// latest recording stamp; a still-equal stamp lets the later-appended event win.
func latestAcquisitionOn(rec domain.AssetRecord, asOf domain.CalendarDate) (domain.AcquisitionEvent, bool) {
	var (
		best  domain.AcquisitionEvent
		found bool
	)
	for _, ev := range rec.Acquisitions {
		if ev.Date.After(asOf) {
			continue
		}
		if !found || wins(ev.Date, ev.RecordedAt, best.Date, best.RecordedAt) {
			best = ev
			found = true
		}
	}
	return best, found
}

// latestDisposalOn mirrors latestAcquisitionOn for disposal events.
func latestDisposalOn(rec domain.AssetRecord, asOf domain.CalendarDate) (domain.DisposalEvent, bool) {
	var (
		best  domain.DisposalEvent
		found bool
	)
	for _, ev := range rec.Disposals {
		if ev.Date.After(asOf) {
			continue
		}
		if !found || wins(ev.Date, ev.RecordedAt, best.Date, best.RecordedAt) {
			best = ev
			found = true
		}
	}
	return best, found
}

func wins(date domain.CalendarDate, recorded time.Time, bestDate domain.CalendarDate, bestRecorded time.Time) bool {
	switch date.Compare(bestDate) {
	case 1:
		return true
	case -1:
		return false
	default:
		return !recorded.Before(bestRecorded)
	}
}

// statusOn resolves the lifecycle status of a record as of a date. A disposal
// whose effective date ties or beats the newest acquisition marks the asset
// disposed; an acquisition strictly after the newest disposal re-activates it.
func statusOn(rec domain.AssetRecord, asOf domain.CalendarDate) domain.Status {
	acq, hasAcq := latestAcquisitionOn(rec, asOf)
	disp, hasDisp := latestDisposalOn(rec, asOf)
	switch {
	case !hasAcq && !hasDisp:
		return domain.StatusUnknown
	case !hasDisp:
		return domain.StatusActive
	case !hasAcq:
		return domain.StatusDisposed
	}
	if acq.Date.After(disp.Date) {
		return domain.StatusActive
	}
	return domain.StatusDisposed
}

// assigneeOn returns the assignee bound to the asset while it is active as of
// the date. Disposed and unknown assets have no assignee.
func assigneeOn(rec domain.AssetRecord, asOf domain.CalendarDate) (string, bool) {
	if statusOn(rec, asOf) != domain.StatusActive {
		return "", false
	}
	acq, ok := latestAcquisitionOn(rec, asOf)
	if !ok {
		return "", false
	}
	return acq.AssigneeID, true
}
