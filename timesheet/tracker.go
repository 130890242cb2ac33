/*
Package timesheet owns the recorded work sessions.

PURPOSE:
  The Tracker is the single mutable holder of the entry collection. It loads
  the collection from a Repository once, applies additions and deletions in
  memory, persists the full snapshot after every change and answers period
  summaries by delegating to the pure engine.

FAILURE SEMANTICS:
  - Load failure: collection stays empty, the failure is logged and returned
  - Save failure: in-memory change is kept, the failure is logged, the
    operation still succeeds
  - Publish failure: logged only

CONCURRENCY:
  Uses sync.RWMutex. Saves happen under the write lock so snapshots reach
  the repository in the order the changes were applied.

SEE ALSO:
  - engine/entry.go: Filtering and totals
  - timesheet/repository.go: Persistence contract
  - events/events.go: Emitted events
*/
package timesheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/events"
)

// =============================================================================
// NEW ENTRY - Unvalidated input
// =============================================================================

// NewEntry is an entry as submitted, before validation and ID assignment.
type NewEntry struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	TimeIn   string `json:"timeIn"`
	TimeOut  string `json:"timeOut"`
}

// Validate checks required fields and converts the input into an entry
// without an ID. Timestamps in Date are truncated to their day in loc.
func (n NewEntry) Validate(loc *time.Location) (engine.TimeEntry, error) {
	if n.Date == "" {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "date", Message: "is required"}
	}
	day, err := engine.ParseDay(n.Date, loc)
	if err != nil {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "date", Message: "must be YYYY-MM-DD or RFC 3339"}
	}
	location, err := engine.ParseLocation(n.Location)
	if err != nil {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "location", Message: fmt.Sprintf("unknown location %q", n.Location)}
	}
	if n.TimeIn == "" {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "timeIn", Message: "is required"}
	}
	if !engine.ValidClock(n.TimeIn) {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "timeIn", Message: "must be HH:MM"}
	}
	if n.TimeOut == "" {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "timeOut", Message: "is required"}
	}
	if !engine.ValidClock(n.TimeOut) {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "timeOut", Message: "must be HH:MM"}
	}
	return engine.TimeEntry{
		Date:     day,
		Location: location,
		TimeIn:   n.TimeIn,
		TimeOut:  n.TimeOut,
	}, nil
}

// =============================================================================
// TRACKER
// =============================================================================

// Options configures a Tracker. Zero values fall back to defaults.
type Options struct {
	Periods   engine.PeriodConfig
	Rates     engine.RateTable
	Location  *time.Location
	Publisher events.Publisher
	Logger    zerolog.Logger
	NewID     func() string
	Now       func() time.Time
}

type Tracker struct {
	repo      Repository
	periods   engine.PeriodConfig
	rates     engine.RateTable
	loc       *time.Location
	publisher events.Publisher
	log       zerolog.Logger
	newID     func() string
	now       func() time.Time

	mu      sync.RWMutex
	entries []engine.TimeEntry
	loaded  bool
}

func NewTracker(repo Repository, opts Options) *Tracker {
	t := &Tracker{
		repo:      repo,
		periods:   opts.Periods,
		rates:     opts.Rates,
		loc:       opts.Location,
		publisher: opts.Publisher,
		log:       opts.Logger.With().Str("component", "tracker").Logger(),
		newID:     opts.NewID,
		now:       opts.Now,
		entries:   []engine.TimeEntry{},
	}
	if t.rates.DayRate.IsZero() {
		t.rates = engine.DefaultRateTable()
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.publisher == nil {
		t.publisher = events.Nop{}
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Load replaces the in-memory collection with the repository snapshot.
func (t *Tracker) Load(ctx context.Context) error {
	entries, err := t.repo.Load(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded = true
	if err != nil {
		t.entries = []engine.TimeEntry{}
		t.log.Error().Err(err).Msg("failed to load entries")
		return fmt.Errorf("load entries: %w", err)
	}
	if entries == nil {
		entries = []engine.TimeEntry{}
	}
	t.entries = entries
	t.log.Debug().Int("count", len(entries)).Msg("entries loaded")
	return nil
}

// Loaded reports whether Load has completed, successfully or not.
func (t *Tracker) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Entries returns a copy of the collection in insertion order.
func (t *Tracker) Entries() []engine.TimeEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]engine.TimeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Add validates n, assigns a fresh ID and appends the entry.
func (t *Tracker) Add(ctx context.Context, n NewEntry) (engine.TimeEntry, error) {
	entry, err := n.Validate(t.loc)
	if err != nil {
		return engine.TimeEntry{}, err
	}

	t.mu.Lock()
	entry.ID = t.uniqueIDLocked()
	updated := make([]engine.TimeEntry, len(t.entries), len(t.entries)+1)
	copy(updated, t.entries)
	updated = append(updated, entry)
	t.entries = updated
	t.saveLocked(ctx)
	t.mu.Unlock()

	period := t.periods.PeriodFor(entry.Date)
	t.publish(ctx, events.Event{
		Type:         events.EntryRecorded,
		EntryID:      entry.ID,
		Date:         entry.Date.String(),
		Location:     string(entry.Location),
		Period:       period.Value,
		PeriodLabel:  period.Label,
		TotalMinutes: entry.Duration().TotalMinutes(),
	})
	return entry, nil
}

// Delete removes the entry with the given ID.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	idx := -1
	for i, e := range t.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", engine.ErrEntryNotFound, id)
	}
	removed := t.entries[idx]
	updated := make([]engine.TimeEntry, 0, len(t.entries)-1)
	updated = append(updated, t.entries[:idx]...)
	updated = append(updated, t.entries[idx+1:]...)
	t.entries = updated
	t.saveLocked(ctx)
	t.mu.Unlock()

	t.publish(ctx, events.Event{
		Type:    events.EntryDeleted,
		EntryID: removed.ID,
		Date:    removed.Date.String(),
		Period:  t.periods.PeriodFor(removed.Date).Value,
	})
	return nil
}

// uniqueIDLocked retries on the unlikely collision with an existing ID.
func (t *Tracker) uniqueIDLocked() string {
	for {
		id := t.newID()
		if !t.hasIDLocked(id) {
			return id
		}
	}
}

func (t *Tracker) hasIDLocked(id string) bool {
	for _, e := range t.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (t *Tracker) saveLocked(ctx context.Context) {
	if err := t.repo.Save(ctx, t.entries); err != nil {
		t.log.Error().Err(err).Int("count", len(t.entries)).Msg("failed to save entries")
	}
}

func (t *Tracker) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = t.now()
	}
	if err := t.publisher.Publish(ctx, e); err != nil {
		t.log.Warn().Err(err).Str("type", string(e.Type)).Msg("failed to publish event")
	}
}
