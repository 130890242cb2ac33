/*
handlers.go - HTTP API handlers for the worklog

PURPOSE:
  Exposes the tracker and the period engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Periods:
    GET    /api/periods?count=&order=&future=
                                       Period catalogue, newest first by default
    GET    /api/periods/current        Period containing today

  Entries:
    GET    /api/entries?period=        Entries of a period (current by default)
    POST   /api/entries                Record a session
    DELETE /api/entries/{id}           Remove a session

  Reports:
    GET    /api/summary?period=        Total duration and pay breakdown
    GET    /api/export.csv?period=     CSV download (totals=true adds a footer)
    GET    /api/receipt?period=        Plain-text pay receipt

  Misc:
    GET    /api/config                 Active policy, vocabulary and rates
    GET    /api/health                 Liveness and load state

REQUEST FLOW:
  1. Read today once from the tracker clock
  2. Resolve the period selection key
  3. Call the tracker / engine
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown entry or period key
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/export"
	"github.com/warp/worklog-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options carries presentation settings for the handlers.
type Options struct {
	Vocabulary  engine.Vocabulary
	Currency    string
	PeriodCount int
	Order       engine.Order
	Logger      zerolog.Logger
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *timesheet.Tracker

	vocab       engine.Vocabulary
	currency    string
	periodCount int
	order       engine.Order
	log         zerolog.Logger
}

// NewHandler creates a new handler around the tracker.
func NewHandler(tracker *timesheet.Tracker, opts Options) *Handler {
	h := &Handler{
		Tracker:     tracker,
		vocab:       opts.Vocabulary,
		currency:    opts.Currency,
		periodCount: opts.PeriodCount,
		order:       opts.Order,
		log:         opts.Logger.With().Str("component", "api").Logger(),
	}
	if h.vocab.Name == "" {
		h.vocab = engine.VocabularySpanish
	}
	if h.periodCount <= 0 {
		h.periodCount = 12
	}
	if h.order == "" {
		h.order = engine.NewestFirst
	}
	return h
}

// =============================================================================
// PERIOD ENDPOINTS
// =============================================================================

// ListPeriods returns the period catalogue around today: count periods up to
// the current one, plus future upcoming ones when asked.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	count := h.periodCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > engine.MaxPeriodCount {
			writeError(w, http.StatusBadRequest, "invalid count",
				fmt.Errorf("count must be between 1 and %d", engine.MaxPeriodCount))
			return
		}
		count = n
	}
	future := 0
	if raw := r.URL.Query().Get("future"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > engine.MaxPeriodCount {
			writeError(w, http.StatusBadRequest, "invalid future",
				fmt.Errorf("future must be between 0 and %d", engine.MaxPeriodCount))
			return
		}
		future = n
	}
	order := h.order
	if raw := r.URL.Query().Get("order"); raw != "" {
		o, err := engine.ParseOrder(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid order", err)
			return
		}
		order = o
	}

	today := h.Tracker.Today()
	pc := h.Tracker.PeriodConfig()
	current := pc.PeriodFor(today)
	var periods []engine.Period
	if future > 0 {
		periods = pc.Window(today, count-1, future, order)
	} else {
		periods = pc.GeneratePeriods(count, today, order)
	}

	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p, current)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CurrentPeriod returns the period containing today.
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	current := h.Tracker.CurrentPeriod()
	writeJSON(w, http.StatusOK, toPeriodDTO(current, current))
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

// ListEntries returns the entries of the selected period, most recent first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	entries := engine.FilterEntriesByPeriod(h.Tracker.Entries(), &period)
	writeJSON(w, http.StatusOK, toEntryDTOs(entries, h.vocab))
}

// CreateEntry records a new session.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	entry, err := h.Tracker.Add(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, "failed to create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry, h.vocab))
}

// DeleteEntry removes a session by ID.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Tracker.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, "failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// GetSummary returns the total and the pay breakdown of a period.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	s := h.Tracker.Summary(period)
	current := h.Tracker.CurrentPeriod()

	writeJSON(w, http.StatusOK, SummaryDTO{
		Period:       toPeriodDTO(s.Period, current),
		Entries:      toEntryDTOs(s.Entries, h.vocab),
		TotalMinutes: s.TotalMinutes,
		Total:        s.Total,
		Breakdown:    toBreakdownDTO(s.Breakdown, h.Tracker.Rates(), h.currency),
	})
}

// ExportCSV streams the period's entries as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	s := h.Tracker.Summary(period)

	opts := export.CSVOptions{Vocabulary: h.vocab, Currency: h.currency}
	if r.URL.Query().Get("totals") == "true" {
		opts.Total = &s.Breakdown
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(period, "csv")))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, s.Entries, opts); err != nil {
		h.log.Error().Err(err).Str("period", period.Value).Msg("csv export failed")
	}
}

// GetReceipt renders the plain-text pay receipt.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	s := h.Tracker.Summary(period)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err := export.WriteReceipt(w, export.Receipt{
		Period:      s.Period,
		Entries:     s.Entries,
		Breakdown:   s.Breakdown,
		Rates:       h.Tracker.Rates(),
		Currency:    h.currency,
		Vocabulary:  h.vocab,
		GeneratedAt: h.Tracker.Now(),
	})
	if err != nil {
		h.log.Error().Err(err).Str("period", period.Value).Msg("receipt rendering failed")
	}
}

// =============================================================================
// MISC ENDPOINTS
// =============================================================================

// GetConfig returns the active settings.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	locations := make([]LocationDTO, len(engine.Locations))
	for i, loc := range engine.Locations {
		locations[i] = LocationDTO{Key: loc, Label: h.vocab.Label(loc)}
	}
	pc := h.Tracker.PeriodConfig()
	policy := pc.Policy
	if policy == "" {
		policy = engine.DefaultPolicy
	}
	rates := h.Tracker.Rates()

	writeJSON(w, http.StatusOK, ConfigDTO{
		Policy:      policy,
		PeriodCount: h.periodCount,
		Order:       h.order,
		Vocabulary:  h.vocab.Name,
		Locations:   locations,
		DayRate:     engine.FormatMoney(rates.DayRate),
		HoursPerDay: rates.MinutesPerDay() / 60,
		Currency:    h.currency,
		Timezone:    h.Tracker.Location().String(),
	})
}

// Health reports liveness and whether entries were loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loaded":  h.Tracker.Loaded(),
		"entries": len(h.Tracker.Entries()),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// resolvePeriod reads ?period= and writes the error response itself.
func (h *Handler) resolvePeriod(w http.ResponseWriter, r *http.Request) (engine.Period, bool) {
	period, err := h.Tracker.ResolvePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.writeDomainError(w, "unknown period", err)
		return engine.Period{}, false
	}
	return period, true
}

// writeDomainError maps engine errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, message, map[string]string{"field": verr.Field, "message": verr.Message})
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		h.log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError accepts an error or any JSON-serialisable details value.
func writeError(w http.ResponseWriter, status int, message string, details any) {
	resp := ErrorResponse{Error: message}
	switch d := details.(type) {
	case nil:
	case error:
		resp.Details = d.Error()
	default:
		resp.Details = d
	}
	writeJSON(w, status, resp)
}
