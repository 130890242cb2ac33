package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(s string) engine.Day {
	return engine.MustParseDay(s)
}

var (
	calendarHalf = engine.PeriodConfig{Policy: engine.PolicyCalendarHalf}
	cycle2726    = engine.PeriodConfig{Policy: engine.PolicyCycle2726}
	allPolicies  = map[string]engine.PeriodConfig{
		"calendar_half": calendarHalf,
		"cycle_27_26":   cycle2726,
	}
)

func assertBounds(t *testing.T, p engine.Period, start, end string) {
	t.Helper()
	assert.Equal(t, start, p.Start.String(), "start of %s", p)
	assert.Equal(t, end, p.End.String(), "end of %s", p)
	assert.Equal(t, start, p.Value)
}

// =============================================================================
// POLICY B: 27 -> 12 / 13 -> 26
// =============================================================================

func TestCycle2726_PeriodFor(t *testing.T) {
	tests := []struct {
		ref        string
		start, end string
		half       int
	}{
		{"2024-03-05", "2024-02-27", "2024-03-12", 1},
		{"2024-03-12", "2024-02-27", "2024-03-12", 1},
		{"2024-03-13", "2024-03-13", "2024-03-26", 2},
		{"2024-03-26", "2024-03-13", "2024-03-26", 2},
		{"2024-03-27", "2024-03-27", "2024-04-12", 1},
		{"2024-03-31", "2024-03-27", "2024-04-12", 1},
		// year wraps
		{"2024-12-28", "2024-12-27", "2025-01-12", 1},
		{"2025-01-05", "2024-12-27", "2025-01-12", 1},
		{"2025-01-13", "2025-01-13", "2025-01-26", 2},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p := cycle2726.PeriodFor(day(tt.ref))
			assertBounds(t, p, tt.start, tt.end)
			assert.Equal(t, tt.half, p.Half)
		})
	}
}

func TestCycle2726_Label(t *testing.T) {
	p := cycle2726.PeriodFor(day("2024-03-05"))
	assert.Equal(t, "Feb 27 - Mar 12", p.Label)

	custom := engine.PeriodConfig{Policy: engine.PolicyCycle2726, LabelLayout: "02/01"}
	assert.Equal(t, "27/02 - 12/03", custom.PeriodFor(day("2024-03-05")).Label)
}

// =============================================================================
// POLICY A: 1 -> 15 / 16 -> end of month
// =============================================================================

func TestCalendarHalf_PeriodFor(t *testing.T) {
	tests := []struct {
		ref        string
		start, end string
		half       int
	}{
		{"2024-01-01", "2024-01-01", "2024-01-15", 1},
		{"2024-01-15", "2024-01-01", "2024-01-15", 1},
		{"2024-01-16", "2024-01-16", "2024-01-31", 2},
		{"2024-02-20", "2024-02-16", "2024-02-29", 2}, // leap year
		{"2023-02-20", "2023-02-16", "2023-02-28", 2},
		{"2024-04-30", "2024-04-16", "2024-04-30", 2},
		{"2024-12-31", "2024-12-16", "2024-12-31", 2},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p := calendarHalf.PeriodFor(day(tt.ref))
			assertBounds(t, p, tt.start, tt.end)
			assert.Equal(t, tt.half, p.Half)
		})
	}
}

func TestCalendarHalf_Label(t *testing.T) {
	p := calendarHalf.PeriodFor(day("2024-03-02"))
	assert.Equal(t, "Mar 1 - Mar 15", p.Label)
}

func TestPeriodConfig_EmptyPolicyUsesDefault(t *testing.T) {
	var pc engine.PeriodConfig
	assert.Equal(t, cycle2726.PeriodFor(day("2024-06-01")), pc.PeriodFor(day("2024-06-01")))
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestPeriodFor_ContainsReference_EveryDay(t *testing.T) {
	for name, pc := range allPolicies {
		t.Run(name, func(t *testing.T) {
			for d := day("2023-01-01"); d.BeforeOrEqual(day("2025-12-31")); d = d.AddDays(1) {
				p := pc.PeriodFor(d)
				require.True(t, p.Valid(), "invalid period for %s", d)
				require.True(t, p.Contains(d), "%s not in %s", d, p)
			}
		})
	}
}

func TestNextAndPrevious_AreContiguous(t *testing.T) {
	for name, pc := range allPolicies {
		t.Run(name, func(t *testing.T) {
			p := pc.PeriodFor(day("2023-11-20"))
			for i := 0; i < 40; i++ {
				next := pc.NextPeriod(p)
				require.True(t, p.End.AddDays(1).Equal(next.Start), "%s -> %s", p, next)
				require.Equal(t, p, pc.PreviousPeriod(next))
				p = next
			}
		})
	}
}

func TestGeneratePeriods_CountDistinctContiguous(t *testing.T) {
	refs := []string{"2024-01-01", "2024-03-12", "2024-03-13", "2024-12-28", "2025-02-28"}
	for name, pc := range allPolicies {
		for _, ref := range refs {
			t.Run(name+"/"+ref, func(t *testing.T) {
				// WHEN: Generating 12 periods newest first
				periods := pc.GeneratePeriods(12, day(ref), engine.NewestFirst)

				// THEN: Exactly 12, distinct keys, newest contains the reference
				require.Len(t, periods, 12)
				seen := map[string]bool{}
				for _, p := range periods {
					assert.False(t, seen[p.Value], "duplicate %s", p.Value)
					seen[p.Value] = true
				}
				assert.True(t, periods[0].Contains(day(ref)))

				// AND: Each older period ends the day before the newer one starts
				for i := 0; i+1 < len(periods); i++ {
					assert.True(t, periods[i+1].End.AddDays(1).Equal(periods[i].Start),
						"%s and %s not contiguous", periods[i+1], periods[i])
				}
			})
		}
	}
}

func TestGeneratePeriods_OldestFirst(t *testing.T) {
	periods := cycle2726.GeneratePeriods(3, day("2024-03-05"), engine.OldestFirst)
	require.Len(t, periods, 3)
	assert.Equal(t, "2024-01-27", periods[0].Value)
	assert.Equal(t, "2024-02-13", periods[1].Value)
	assert.Equal(t, "2024-02-27", periods[2].Value)
}

func TestGeneratePeriods_NonPositiveCount(t *testing.T) {
	assert.Empty(t, cycle2726.GeneratePeriods(0, day("2024-03-05"), engine.NewestFirst))
	assert.Empty(t, cycle2726.GeneratePeriods(-3, day("2024-03-05"), engine.NewestFirst))
}

func TestGeneratePeriods_MaxCount(t *testing.T) {
	for name, pc := range allPolicies {
		t.Run(name, func(t *testing.T) {
			periods := pc.GeneratePeriods(engine.MaxPeriodCount, day("2024-03-05"), engine.OldestFirst)

			require.Len(t, periods, engine.MaxPeriodCount)
			assert.True(t, periods[len(periods)-1].Contains(day("2024-03-05")))
		})
	}
}

func TestWindow_PastAndFuture(t *testing.T) {
	periods := calendarHalf.Window(day("2024-03-20"), 2, 1, engine.OldestFirst)
	require.Len(t, periods, 4)
	assert.Equal(t, "2024-02-16", periods[0].Value)
	assert.Equal(t, "2024-03-01", periods[1].Value)
	assert.Equal(t, "2024-03-16", periods[2].Value)
	assert.Equal(t, "2024-04-01", periods[3].Value)
	for i := 0; i+1 < len(periods); i++ {
		assert.True(t, periods[i].End.AddDays(1).Equal(periods[i+1].Start))
	}
}

func TestPeriodByValue(t *testing.T) {
	p, err := cycle2726.PeriodByValue("2024-02-27")
	require.NoError(t, err)
	assertBounds(t, p, "2024-02-27", "2024-03-12")

	_, err = cycle2726.PeriodByValue("2024-03-01")
	assert.ErrorIs(t, err, engine.ErrUnknownPeriod)

	p, err = calendarHalf.PeriodByValue("2024-03-01")
	require.NoError(t, err)
	assertBounds(t, p, "2024-03-01", "2024-03-15")

	_, err = calendarHalf.PeriodByValue("not-a-date")
	assert.ErrorIs(t, err, engine.ErrUnknownPeriod)
}

func TestPeriodByValue_TrimsWhitespace(t *testing.T) {
	p, err := cycle2726.PeriodByValue(" 2024-02-27\n")
	require.NoError(t, err)
	assertBounds(t, p, "2024-02-27", "2024-03-12")
}

func TestParsePeriodPolicy(t *testing.T) {
	p, err := engine.ParsePeriodPolicy("CALENDAR_HALF")
	require.NoError(t, err)
	assert.Equal(t, engine.PolicyCalendarHalf, p)

	p, err = engine.ParsePeriodPolicy("")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultPolicy, p)

	_, err = engine.ParsePeriodPolicy("weekly")
	assert.ErrorIs(t, err, engine.ErrUnknownPolicy)
}

func TestParseOrder(t *testing.T) {
	o, err := engine.ParseOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, engine.OldestFirst, o)

	o, err = engine.ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, engine.NewestFirst, o)

	_, err = engine.ParseOrder("sideways")
	assert.Error(t, err)
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, 29, engine.EndOfMonth(2024, time.February).Day())
	assert.Equal(t, 28, engine.EndOfMonth(2023, time.February).Day())
	assert.Equal(t, 30, engine.EndOfMonth(2024, time.April).Day())
	assert.Equal(t, 31, engine.EndOfMonth(2024, time.December).Day())
}
