package timesheet

import (
	"context"

	"github.com/warp/worklog-engine/engine"
)

// DefaultStorageKey names the single persisted collection.
const DefaultStorageKey = "howo-entries"

// Repository persists the whole entry collection as one snapshot.
//
// Implementations:
//   - engine/store.Memory: tests and dev
//   - store/jsonfile.Store: one JSON document per storage key
//   - store/sqlite.Store: entries table scoped by storage key
type Repository interface {
	// Load returns the last saved snapshot, or an empty slice if nothing was
	// ever saved.
	Load(ctx context.Context) ([]engine.TimeEntry, error)

	// Save replaces the snapshot. A failed Save leaves the previous snapshot.
	Save(ctx context.Context, entries []engine.TimeEntry) error
}
