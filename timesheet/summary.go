package timesheet

import (
	"time"

	"github.com/warp/worklog-engine/engine"
)

// =============================================================================
// SUMMARY - Everything a period view shows
// =============================================================================

// Summary is the aggregate for one period.
type Summary struct {
	Period       engine.Period
	Entries      []engine.TimeEntry // most recent first
	TotalMinutes int
	Total        string // HH:MM
	Breakdown    engine.Breakdown
}

// Summarize filters entries by period and prices the total.
func Summarize(entries []engine.TimeEntry, period engine.Period, rates engine.RateTable) Summary {
	filtered := engine.FilterEntriesByPeriod(entries, &period)
	total := engine.CalculateTotalMinutes(filtered)
	return Summary{
		Period:       period,
		Entries:      filtered,
		TotalMinutes: total,
		Total:        engine.FormatTotalDuration(total),
		Breakdown:    rates.Calculate(total),
	}
}

// Summary aggregates the tracker's entries for period.
func (t *Tracker) Summary(period engine.Period) Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Summarize(t.entries, period, t.rates)
}

// Now reads the tracker clock in the tracker's timezone.
func (t *Tracker) Now() time.Time {
	return t.now().In(t.loc)
}

// Today is the current calendar day in the tracker's timezone.
func (t *Tracker) Today() engine.Day {
	return engine.DayOf(t.Now())
}

// CurrentPeriod is the period containing Today.
func (t *Tracker) CurrentPeriod() engine.Period {
	return t.periods.PeriodFor(t.Today())
}

// ResolvePeriod maps an optional selection key to a period. An empty key
// selects the current period.
func (t *Tracker) ResolvePeriod(value string) (engine.Period, error) {
	if value == "" {
		return t.CurrentPeriod(), nil
	}
	return t.periods.PeriodByValue(value)
}

func (t *Tracker) PeriodConfig() engine.PeriodConfig { return t.periods }
func (t *Tracker) Rates() engine.RateTable           { return t.rates }
func (t *Tracker) Location() *time.Location          { return t.loc }
