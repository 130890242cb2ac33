package engine

import "fmt"

// Duration is a worked span at minute granularity.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// TotalMinutes flattens the duration.
func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

// CalculateDuration converts a time-in/time-out pair into hours and minutes.
//
// Both values are read as wall-clock times on the same nominal day. Missing
// or unparseable values yield a zero duration, and so does a time-out earlier
// than the time-in: overnight shifts are not supported.
func CalculateDuration(timeIn, timeOut string) Duration {
	start, ok := parseClock(timeIn)
	if !ok {
		return Duration{}
	}
	end, ok := parseClock(timeOut)
	if !ok {
		return Duration{}
	}
	diff := end - start
	if diff < 0 {
		return Duration{}
	}
	return Duration{Hours: diff / 60, Minutes: diff % 60}
}

// FormatDuration renders "8h 30m". No validation.
func FormatDuration(d Duration) string {
	return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
}

// FormatTotalDuration renders a minute total as zero-padded "HH:MM". Hours
// grow past two digits when needed; negative totals render as "00:00".
func FormatTotalDuration(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
