package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// calendarLayout is the canonical wire format for calendar dates.
const calendarLayout = "2006-01-02"

// CalendarDate is a timezone-free year/month/day value. It is the only date
// representation internal logic operates on; raw text and richer date/time
// values are converted at the API boundary. The zero value means "unset"
// and defaults to the current local day on query paths.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate validates and constructs a calendar date. It rejects
// values that do not name a real day (e.g. February 30th).
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, InvalidDateError{Input: CalendarDate{Year: year, Month: month, Day: day}.String()}
	}
	return CalendarDate{Year: year, Month: month, Day: day}, nil
}

// acceptedLayouts are tried in order when parsing boundary input. The list
// covers ISO dates plus the richer timestamp shapes upstream ingestion
// hands over.
var acceptedLayouts = []string{
	calendarLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseCalendarDate converts a calendar-date-like string into a canonical
// CalendarDate, discarding any time-of-day component. Returns
// InvalidDateError when the input cannot be parsed into a real date.
func ParseCalendarDate(input string) (CalendarDate, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return CalendarDate{}, InvalidDateError{Input: input}
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return DateOf(t), nil
		}
	}
	return CalendarDate{}, InvalidDateError{Input: input}
}

// DateOf truncates a time value to its calendar day.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current local calendar day.
func Today() CalendarDate {
	return DateOf(time.Now())
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns the date at midnight UTC, the form used for comparisons.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare orders two dates: -1 when d precedes other, 0 when equal, 1 when
// d follows other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Time().Before(other.Time()):
		return -1
	case d.Time().After(other.Time()):
		return 1
	default:
		return 0
	}
}

// Before reports whether d precedes other.
func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }

// After reports whether d follows other.
func (d CalendarDate) After(other CalendarDate) bool { return d.Compare(other) > 0 }

// String renders the canonical YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return d.Time().Format(calendarLayout)
}

// MarshalJSON writes the canonical YYYY-MM-DD form.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the canonical form plus the richer shapes handled
// by ParseCalendarDate, so documents written by earlier tooling load.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCalendarDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
