package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TABLE - Fixed pay rates
// =============================================================================

// RateTable prices worked time. Only the day rate is configured; hour and
// minute rates are derived so the three subtotals always agree.
type RateTable struct {
	DayRate     decimal.Decimal
	HoursPerDay int
}

// DefaultRateTable is 150 currency units per 8-hour day.
func DefaultRateTable() RateTable {
	return RateTable{DayRate: decimal.NewFromInt(150), HoursPerDay: 8}
}

func (rt RateTable) hoursPerDay() int {
	if rt.HoursPerDay <= 0 {
		return 8
	}
	return rt.HoursPerDay
}

// MinutesPerDay is the length of one paid work day (480 by default).
func (rt RateTable) MinutesPerDay() int { return rt.hoursPerDay() * 60 }

// HourRate is DayRate / HoursPerDay.
func (rt RateTable) HourRate() decimal.Decimal {
	return rt.DayRate.Div(decimal.NewFromInt(int64(rt.hoursPerDay())))
}

// MinuteRate is HourRate / 60.
func (rt RateTable) MinuteRate() decimal.Decimal {
	return rt.HourRate().Div(decimal.NewFromInt(60))
}

// =============================================================================
// BREAKDOWN - Total minutes decomposed into priced days/hours/minutes
// =============================================================================

// Breakdown keeps every monetary value at full precision; rounding happens
// only in FormatMoney.
type Breakdown struct {
	TotalMinutes    int
	WorkDays        int
	ExtraHours      int
	ExtraMinutes    int
	DaysSubtotal    decimal.Decimal
	HoursSubtotal   decimal.Decimal
	MinutesSubtotal decimal.Decimal
	GrandTotal      decimal.Decimal
}

// Calculate decomposes totalMinutes into whole work days plus extra hours
// and minutes and prices each part. Negative totals are treated as zero.
func (rt RateTable) Calculate(totalMinutes int) Breakdown {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	perDay := rt.MinutesPerDay()
	workDays := totalMinutes / perDay
	rest := totalMinutes % perDay

	b := Breakdown{
		TotalMinutes: totalMinutes,
		WorkDays:     workDays,
		ExtraHours:   rest / 60,
		ExtraMinutes: rest % 60,
	}
	b.DaysSubtotal = rt.DayRate.Mul(decimal.NewFromInt(int64(b.WorkDays)))
	b.HoursSubtotal = rt.HourRate().Mul(decimal.NewFromInt(int64(b.ExtraHours)))
	b.MinutesSubtotal = rt.MinuteRate().Mul(decimal.NewFromInt(int64(b.ExtraMinutes)))
	b.GrandTotal = b.DaysSubtotal.Add(b.HoursSubtotal).Add(b.MinutesSubtotal)
	return b
}

// FormatMoney renders an amount with two decimals, half away from zero.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
