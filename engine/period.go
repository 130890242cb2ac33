/*
Package engine partitions work sessions into semi-monthly pay periods and
prices the worked time.

PURPOSE:
  Everything in this package is a pure function over values: no clock reads,
  no I/O, no shared state. Callers pass the reference day, the entry
  collection and the selected period explicitly and receive fresh values.

KEY CONCEPTS:
  - Day: a calendar date, never a timestamp
  - Period: an inclusive [Start, End] half-month, keyed by its start day
  - PeriodConfig: which boundary policy applies (calendar_half or cycle_27_26)
  - TimeEntry: one session (date, location, time-in, time-out)
  - RateTable/Breakdown: total minutes -> days/hours/minutes -> money

FLOW:
  periods := cfg.GeneratePeriods(12, today, engine.NewestFirst)
  selected := cfg.PeriodFor(today)
  entries := engine.FilterEntriesByPeriod(all, &selected)
  total := engine.CalculateTotalMinutes(entries)
  breakdown := engine.DefaultRateTable().Calculate(total)

SEE ALSO:
  - timesheet/tracker.go: Owns the entry collection and persistence
  - export/csv.go: Renders filtered entries
*/
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - One semi-monthly pay period
// =============================================================================

// Period is an inclusive calendar-day range covering one payroll half-month.
// Periods are derived values: they are regenerated from a reference day on
// every computation and never persisted.
//
// Value is the start day in DayLayout form. It is unique per period, stable
// across regenerations and sorts chronologically as a plain string.
type Period struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Start Day    `json:"startDate"`
	End   Day    `json:"endDate"`
	Half  int    `json:"half"` // 1 or 2 within its pay month
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Valid reports whether the period has both bounds and Start <= End.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodPolicy selects where the semi-monthly boundaries fall.
type PeriodPolicy string

const (
	// PolicyCalendarHalf: 1st-15th, then 16th-last day of the month.
	PolicyCalendarHalf PeriodPolicy = "calendar_half"

	// PolicyCycle2726: 27th of the previous month to the 12th, then 13th-26th.
	PolicyCycle2726 PeriodPolicy = "cycle_27_26"
)

// DefaultPolicy is used when a PeriodConfig leaves Policy empty.
const DefaultPolicy = PolicyCycle2726

// ParsePeriodPolicy validates a configured policy name.
func ParsePeriodPolicy(s string) (PeriodPolicy, error) {
	switch p := PeriodPolicy(strings.TrimSpace(strings.ToLower(s))); p {
	case PolicyCalendarHalf, PolicyCycle2726:
		return p, nil
	case "":
		return DefaultPolicy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Order controls how period catalogues are sorted.
type Order string

const (
	NewestFirst Order = "newest_first"
	OldestFirst Order = "oldest_first"
)

// ParseOrder maps "", "newest_first"/"desc" and "oldest_first"/"asc".
func ParseOrder(s string) (Order, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", string(NewestFirst), "desc":
		return NewestFirst, nil
	case string(OldestFirst), "asc":
		return OldestFirst, nil
	default:
		return "", fmt.Errorf("unknown period order %q", s)
	}
}

// DefaultLabelLayout renders labels like "Feb 27 - Mar 12".
const DefaultLabelLayout = "Jan 2"

// PeriodConfig defines how periods are calculated.
type PeriodConfig struct {
	Policy PeriodPolicy

	// Go time layout applied to both bounds of a label.
	LabelLayout string
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a day falls into
// =============================================================================

// PeriodFor returns the period that contains the given day.
func (pc PeriodConfig) PeriodFor(day Day) Period {
	switch pc.Policy {
	case PolicyCalendarHalf:
		return pc.calendarHalfPeriod(day)
	default:
		return pc.cyclePeriod(day)
	}
}

func (pc PeriodConfig) calendarHalfPeriod(day Day) Period {
	year, month := day.Year(), day.Month()
	if day.Day() <= 15 {
		return pc.build(NewDay(year, month, 1), NewDay(year, month, 15), 1)
	}
	return pc.build(NewDay(year, month, 16), EndOfMonth(year, month), 2)
}

func (pc PeriodConfig) cyclePeriod(day Day) Period {
	year, month := day.Year(), day.Month()
	switch d := day.Day(); {
	case d >= 13 && d <= 26:
		return pc.build(NewDay(year, month, 13), NewDay(year, month, 26), 2)
	case d < 13:
		return pc.cycleFirstHalf(year, month)
	default:
		return pc.cycleFirstHalf(year, month+1)
	}
}

// cycleFirstHalf is the first half of the given pay month. time.Date
// normalisation takes care of December/January wraps in both directions.
func (pc PeriodConfig) cycleFirstHalf(year int, month time.Month) Period {
	start := NewDay(year, month-1, 27)
	end := NewDay(year, month, 12)
	return pc.build(start, end, 1)
}

func (pc PeriodConfig) build(start, end Day, half int) Period {
	layout := pc.LabelLayout
	if layout == "" {
		layout = DefaultLabelLayout
	}
	return Period{
		Label: start.Format(layout) + " - " + end.Format(layout),
		Value: start.String(),
		Start: start,
		End:   end,
		Half:  half,
	}
}

// NextPeriod returns the period starting the day after p ends.
func (pc PeriodConfig) NextPeriod(p Period) Period {
	return pc.PeriodFor(p.End.AddDays(1))
}

// PreviousPeriod returns the period ending the day before p starts.
func (pc PeriodConfig) PreviousPeriod(p Period) Period {
	return pc.PeriodFor(p.Start.AddDays(-1))
}

// =============================================================================
// PERIOD CATALOGUE - Selectable periods around a reference day
// =============================================================================

// MaxPeriodCount bounds catalogue sizes accepted from users.
const MaxPeriodCount = 120

// GeneratePeriods returns the count most recent periods, the one containing
// ref included, without duplicate Values.
func (pc PeriodConfig) GeneratePeriods(count int, ref Day, order Order) []Period {
	if count <= 0 {
		return []Period{}
	}
	seen := make(map[string]Period, count)
	p := pc.PeriodFor(ref)
	for guard := 0; len(seen) < count && guard/2 <= count; guard++ {
		seen[p.Value] = p
		p = pc.PreviousPeriod(p)
	}
	return arrange(seen, order)
}

// Window returns the period containing ref plus up to past earlier and future
// later periods.
func (pc PeriodConfig) Window(ref Day, past, future int, order Order) []Period {
	current := pc.PeriodFor(ref)
	seen := map[string]Period{current.Value: current}

	p := current
	for i := 0; i < past; i++ {
		p = pc.PreviousPeriod(p)
		seen[p.Value] = p
	}
	p = current
	for i := 0; i < future; i++ {
		p = pc.NextPeriod(p)
		seen[p.Value] = p
	}
	return arrange(seen, order)
}

// PeriodByValue resolves a selection key into its period. The key must be
// the start day of a period under this config.
func (pc PeriodConfig) PeriodByValue(value string) (Period, error) {
	key := strings.TrimSpace(value)
	start, err := time.Parse(DayLayout, key)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, value)
	}
	p := pc.PeriodFor(DayOf(start))
	if p.Value != key {
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, value)
	}
	return p, nil
}

func arrange(byValue map[string]Period, order Order) []Period {
	periods := make([]Period, 0, len(byValue))
	for _, p := range byValue {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if order == OldestFirst {
			return periods[i].Start.Before(periods[j].Start)
		}
		return periods[i].Start.After(periods[j].Start)
	})
	return periods
}
