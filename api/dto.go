/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money is rendered as
  fixed-decimal strings so clients never see float rounding.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Periods:  PeriodDTO
  Entries:  EntryDTO, CreateEntryRequest
  Summary:  SummaryDTO, BreakdownDTO
  Config:   ConfigDTO, LocationDTO

SEE ALSO:
  - handlers.go: Uses these types
  - timesheet/summary.go: Summary source
*/
package api

import (
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/timesheet"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PeriodDTO is a selectable period.
type PeriodDTO struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Half      int    `json:"half"`
	Current   bool   `json:"current"`
}

// EntryDTO is a recorded session with its computed duration.
type EntryDTO struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Location      engine.Location `json:"location"`
	LocationLabel string          `json:"locationLabel"`
	TimeIn        string          `json:"timeIn"`
	TimeOut       string          `json:"timeOut"`
	Duration      engine.Duration `json:"duration"`
	DurationText  string          `json:"durationText"`
}

// CreateEntryRequest is the body of POST /api/entries.
type CreateEntryRequest = timesheet.NewEntry

// BreakdownDTO is the priced decomposition of a period total.
type BreakdownDTO struct {
	WorkDays        int    `json:"workDays"`
	ExtraHours      int    `json:"extraHours"`
	ExtraMinutes    int    `json:"extraMinutes"`
	DayRate         string `json:"dayRate"`
	HourRate        string `json:"hourRate"`
	MinuteRate      string `json:"minuteRate"`
	DaysSubtotal    string `json:"daysSubtotal"`
	HoursSubtotal   string `json:"hoursSubtotal"`
	MinutesSubtotal string `json:"minutesSubtotal"`
	GrandTotal      string `json:"grandTotal"`
	Currency        string `json:"currency"`
}

// SummaryDTO answers GET /api/summary.
type SummaryDTO struct {
	Period       PeriodDTO    `json:"period"`
	Entries      []EntryDTO   `json:"entries"`
	TotalMinutes int          `json:"totalMinutes"`
	Total        string       `json:"total"`
	Breakdown    BreakdownDTO `json:"breakdown"`
}

type LocationDTO struct {
	Key   engine.Location `json:"key"`
	Label string          `json:"label"`
}

// ConfigDTO exposes the active settings to clients.
type ConfigDTO struct {
	Policy      engine.PeriodPolicy `json:"policy"`
	PeriodCount int                 `json:"periodCount"`
	Order       engine.Order        `json:"order"`
	Vocabulary  string              `json:"vocabulary"`
	Locations   []LocationDTO       `json:"locations"`
	DayRate     string              `json:"dayRate"`
	HoursPerDay int                 `json:"hoursPerDay"`
	Currency    string              `json:"currency"`
	Timezone    string              `json:"timezone"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPeriodDTO(p engine.Period, current engine.Period) PeriodDTO {
	return PeriodDTO{
		Label:     p.Label,
		Value:     p.Value,
		StartDate: p.Start.String(),
		EndDate:   p.End.String(),
		Half:      p.Half,
		Current:   p.Value == current.Value,
	}
}

func toEntryDTO(e engine.TimeEntry, vocab engine.Vocabulary) EntryDTO {
	d := e.Duration()
	return EntryDTO{
		ID:            e.ID,
		Date:          e.Date.String(),
		Location:      e.Location,
		LocationLabel: vocab.Label(e.Location),
		TimeIn:        e.TimeIn,
		TimeOut:       e.TimeOut,
		Duration:      d,
		DurationText:  engine.FormatDuration(d),
	}
}

func toEntryDTOs(entries []engine.TimeEntry, vocab engine.Vocabulary) []EntryDTO {
	out := make([]EntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toEntryDTO(e, vocab)
	}
	return out
}

func toBreakdownDTO(b engine.Breakdown, rates engine.RateTable, currency string) BreakdownDTO {
	return BreakdownDTO{
		WorkDays:        b.WorkDays,
		ExtraHours:      b.ExtraHours,
		ExtraMinutes:    b.ExtraMinutes,
		DayRate:         engine.FormatMoney(rates.DayRate),
		HourRate:        engine.FormatMoney(rates.HourRate()),
		MinuteRate:      rates.MinuteRate().StringFixed(4),
		DaysSubtotal:    engine.FormatMoney(b.DaysSubtotal),
		HoursSubtotal:   engine.FormatMoney(b.HoursSubtotal),
		MinutesSubtotal: engine.FormatMoney(b.MinutesSubtotal),
		GrandTotal:      engine.FormatMoney(b.GrandTotal),
		Currency:        currency,
	}
}
