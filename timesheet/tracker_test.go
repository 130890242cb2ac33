package timesheet_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/engine/store"
	"github.com/warp/worklog-engine/events"
	"github.com/warp/worklog-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fixture struct {
	repo      *store.Memory
	publisher *events.Recorder
	tracker   *timesheet.Tracker
}

func newFixture(t *testing.T, seed ...engine.TimeEntry) *fixture {
	t.Helper()
	f := &fixture{repo: store.NewMemory(seed...), publisher: &events.Recorder{}}
	n := 0
	f.tracker = timesheet.NewTracker(f.repo, timesheet.Options{
		Periods:   engine.PeriodConfig{Policy: engine.PolicyCycle2726},
		Location:  time.UTC,
		Publisher: f.publisher,
		Logger:    zerolog.Nop(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
		Now: func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) },
	})
	return f
}

func newEntry(date, loc, in, out string) timesheet.NewEntry {
	return timesheet.NewEntry{Date: date, Location: loc, TimeIn: in, TimeOut: out}
}

// =============================================================================
// LOAD
// =============================================================================

func TestTracker_LoadsSnapshot(t *testing.T) {
	seed := engine.TimeEntry{ID: "2024-03-01T05:00:00.000Z", Date: engine.MustParseDay("2024-03-01"), Location: engine.LocationOnSite, TimeIn: "08:00", TimeOut: "16:00"}
	f := newFixture(t, seed)
	assert.False(t, f.tracker.Loaded())

	require.NoError(t, f.tracker.Load(context.Background()))

	assert.True(t, f.tracker.Loaded())
	assert.Equal(t, []engine.TimeEntry{seed}, f.tracker.Entries())
}

func TestTracker_LoadFailureLeavesEmptyCollection(t *testing.T) {
	// GIVEN: A repository that cannot be read
	f := newFixture(t)
	f.repo.FailWith(errors.New("corrupt"))

	// WHEN: Loading
	err := f.tracker.Load(context.Background())

	// THEN: The error is reported, the collection is empty, loading is over
	assert.Error(t, err)
	assert.Empty(t, f.tracker.Entries())
	assert.True(t, f.tracker.Loaded())
}

// =============================================================================
// ADD / DELETE
// =============================================================================

func TestTracker_AddAssignsIDAndSaves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.tracker.Load(ctx))

	e, err := f.tracker.Add(ctx, newEntry("2024-03-01", "Tienda", "08:00", "16:00"))

	require.NoError(t, err)
	assert.Equal(t, "id-001", e.ID)
	assert.Equal(t, engine.LocationOnSite, e.Location)
	assert.Equal(t, "2024-03-01", e.Date.String())

	saved, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []engine.TimeEntry{e}, saved)

	require.Len(t, f.publisher.Events(), 1)
	ev := f.publisher.Events()[0]
	assert.Equal(t, events.EntryRecorded, ev.Type)
	assert.Equal(t, "2024-02-27", ev.Period)
	assert.Equal(t, 480, ev.TotalMinutes)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestTracker_AddTimestampDateUsesTrackerTimezone(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	tr := timesheet.NewTracker(repo, timesheet.Options{
		Location: time.FixedZone("PET", -5*3600),
		Logger:   zerolog.Nop(),
	})

	e, err := tr.Add(ctx, newEntry("2024-03-01T05:00:00.000Z", "remote", "09:00", "10:00"))

	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", e.Date.String())
	assert.NotEmpty(t, e.ID)
}

func TestTracker_AddValidation(t *testing.T) {
	tests := []struct {
		name  string
		input timesheet.NewEntry
		field string
	}{
		{"missing date", newEntry("", "remote", "08:00", "09:00"), "date"},
		{"bad date", newEntry("01/03/2024", "remote", "08:00", "09:00"), "date"},
		{"bad location", newEntry("2024-03-01", "beach", "08:00", "09:00"), "location"},
		{"missing time in", newEntry("2024-03-01", "remote", "", "09:00"), "timeIn"},
		{"bad time out", newEntry("2024-03-01", "remote", "08:00", "late"), "timeOut"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.tracker.Add(context.Background(), tt.input)

			var verr *engine.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, engine.ErrInvalidEntry)
			assert.True(t, engine.IsClientError(err))
			assert.Empty(t, f.tracker.Entries())
			assert.Zero(t, f.repo.Saves())
		})
	}
}

func TestTracker_ReversedTimesAreAccepted(t *testing.T) {
	f := newFixture(t)

	e, err := f.tracker.Add(context.Background(), newEntry("2024-03-01", "remote", "18:00", "09:00"))

	require.NoError(t, err)
	assert.Equal(t, engine.Duration{}, e.Duration())
}

func TestTracker_SaveFailureKeepsInMemoryState(t *testing.T) {
	// GIVEN: A repository that rejects writes
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.tracker.Load(ctx))
	f.repo.FailWith(errors.New("quota exceeded"))

	// WHEN: Adding an entry
	e, err := f.tracker.Add(ctx, newEntry("2024-03-01", "remote", "08:00", "09:00"))

	// THEN: The add succeeds in memory
	require.NoError(t, err)
	assert.Equal(t, []engine.TimeEntry{e}, f.tracker.Entries())

	// AND: Nothing reached the repository
	f.repo.FailWith(nil)
	saved, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestTracker_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, err := f.tracker.Add(ctx, newEntry("2024-03-01", "remote", "08:00", "09:00"))
	require.NoError(t, err)
	b, err := f.tracker.Add(ctx, newEntry("2024-03-02", "remote", "08:00", "09:00"))
	require.NoError(t, err)

	require.NoError(t, f.tracker.Delete(ctx, a.ID))

	assert.Equal(t, []engine.TimeEntry{b}, f.tracker.Entries())
	saved, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []engine.TimeEntry{b}, saved)
	assert.Equal(t, []events.Type{events.EntryRecorded, events.EntryRecorded, events.EntryDeleted}, f.publisher.Types())
}

func TestTracker_DeleteUnknown(t *testing.T) {
	f := newFixture(t)

	err := f.tracker.Delete(context.Background(), "nope")

	assert.ErrorIs(t, err, engine.ErrEntryNotFound)
	assert.True(t, engine.IsNotFound(err))
}

func TestTracker_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.FailWith(errors.New("broker down"))

	_, err := f.tracker.Add(context.Background(), newEntry("2024-03-01", "remote", "08:00", "09:00"))

	assert.NoError(t, err)
	assert.Len(t, f.tracker.Entries(), 1)
}

func TestTracker_EntriesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.tracker.Add(ctx, newEntry("2024-03-01", "remote", "08:00", "09:00"))
	require.NoError(t, err)

	got := f.tracker.Entries()
	got[0].ID = "mutated"

	assert.Equal(t, "id-001", f.tracker.Entries()[0].ID)
}

func TestTracker_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	seed := engine.TimeEntry{ID: "id-001", Date: engine.MustParseDay("2024-03-01"), Location: engine.LocationRemote, TimeIn: "08:00", TimeOut: "09:00"}
	f := newFixture(t, seed)
	require.NoError(t, f.tracker.Load(ctx))

	e, err := f.tracker.Add(ctx, newEntry("2024-03-02", "remote", "08:00", "09:00"))

	require.NoError(t, err)
	assert.Equal(t, "id-002", e.ID)
}
