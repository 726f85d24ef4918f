package reply

import (
	"strings"
	"time"
)

// AppointmentLayout renders e.g. "Tuesday, 30 September 2025 at 02:30 PM".
const AppointmentLayout = "Monday, 02 January 2006 at 03:04 PM"

// DateTimePlaceholder stands in for a date/time that could not be read.
const DateTimePlaceholder = "your selected date and time"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// DateTime is an appointment time as supplied by the orchestrator, either a
// raw ISO-8601 string or structured fields.
type DateTime struct {
	Raw        string
	Structured bool
	Year       int
	Month      int
	Day        int
	Hours      int
	Minutes    int
	Seconds    int
	Nanos      int
}

// IsZero reports whether no date/time was supplied at all.
func (d DateTime) IsZero() bool {
	return !d.Structured && strings.TrimSpace(d.Raw) == ""
}

// Time parses the value. Wall-clock time is kept as supplied.
func (d DateTime) Time() (time.Time, bool) {
	if d.Structured {
		return d.structuredTime()
	}
	raw := strings.TrimSpace(d.Raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (d DateTime) structuredTime() (time.Time, bool) {
	if d.Year <= 0 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return time.Time{}, false
	}
	if d.Hours < 0 || d.Hours > 23 || d.Minutes < 0 || d.Minutes > 59 || d.Seconds < 0 || d.Seconds > 59 {
		return time.Time{}, false
	}
	if d.Nanos < 0 || d.Nanos >= int(time.Second) {
		return time.Time{}, false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, d.Hours, d.Minutes, d.Seconds, d.Nanos, time.UTC)
	if t.Day() != d.Day || int(t.Month()) != d.Month {
		return time.Time{}, false
	}
	return t, true
}

// FormatAppointment renders d with AppointmentLayout, or the placeholder and
// false when d cannot be read.
func FormatAppointment(d DateTime) (string, bool) {
	t, ok := d.Time()
	if !ok {
		return DateTimePlaceholder, false
	}
	return t.Format(AppointmentLayout), true
}
