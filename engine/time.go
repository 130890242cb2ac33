package engine

import (
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar day abstraction (time-of-day is never significant)
// =============================================================================

// DayLayout is the text form of a Day, also used as the stable period key.
const DayLayout = "2006-01-02"

// Day is a calendar date. The wrapped time is always midnight UTC so that
// comparisons and day arithmetic never depend on the host timezone.
type Day struct {
	Time time.Time
}

// NewDay builds a Day. Out-of-range values normalise like time.Date does
// (month 0 is December of the previous year, day 0 is the last day of the
// previous month).
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates t to its calendar day in t's own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// DayIn truncates t to the calendar day it falls on in loc.
func DayIn(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return DayOf(t.In(loc))
}

// ParseDay accepts either a date-only value ("2024-03-01") or an RFC 3339
// timestamp. Timestamps are converted into loc before truncation, so a local
// midnight serialised as UTC ("2024-03-01T05:00:00.000Z" in UTC-5) still
// lands on March 1st.
func ParseDay(s string, loc *time.Location) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, ErrInvalidDay
	}
	if len(s) == len(DayLayout) {
		t, err := time.Parse(DayLayout, s)
		if err != nil {
			return Day{}, ErrInvalidDay
		}
		return DayOf(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Day{}, ErrInvalidDay
	}
	return DayIn(t, loc), nil
}

// MustParseDay is ParseDay for literals in tests and presets.
func MustParseDay(s string) Day {
	d, err := ParseDay(s, time.UTC)
	if err != nil {
		panic("engine: invalid day literal " + s)
	}
	return d
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int          { return d.Time.Year() }
func (d Day) Month() time.Month  { return d.Time.Month() }
func (d Day) Day() int           { return d.Time.Day() }
func (d Day) IsZero() bool       { return d.Time.IsZero() }
func (d Day) String() string     { return d.Time.Format(DayLayout) }
func (d Day) Format(layout string) string { return d.Time.Format(layout) }

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Timestamps are
// interpreted in the process's local timezone.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b), time.Local)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// EndOfMonth handles 28/29/30/31-day months by stepping back from the first
// of the following month.
func EndOfMonth(year int, month time.Month) Day {
	return NewDay(year, month+1, 1).AddDays(-1)
}

// =============================================================================
// CLOCK TIME - Minute-granularity time of day ("HH:MM")
// =============================================================================

var clockLayouts = []string{"15:04", "15:04:05"}

// parseClock returns minutes since midnight. Seconds are truncated.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// ValidClock reports whether s is an acceptable time-of-day value.
func ValidClock(s string) bool {
	_, ok := parseClock(s)
	return ok
}
