/*
errors.go - Error types shared by the engine and its collaborators

PURPOSE:
  The pure engine functions never fail: bad input degrades to zero durations
  or empty results. These errors exist for the layers around the engine
  (entry validation, period selection, configuration) so every caller reports
  the same conditions the same way.

USAGE:
  if errors.Is(err, engine.ErrEntryNotFound) {
      // 404
  }

SEE ALSO:
  - timesheet/tracker.go: Validates new entries
  - api/handlers.go: Maps errors to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEntryNotFound is returned when deleting an unknown entry ID.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidEntry is returned when a new entry fails validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidLocation is returned for labels outside the closed location set.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidDay is returned when a date is neither YYYY-MM-DD nor RFC 3339.
	ErrInvalidDay = errors.New("invalid date")

	// ErrUnknownPeriod is returned when a period key does not match any period.
	ErrUnknownPeriod = errors.New("unknown period")

	// ErrUnknownPolicy is returned for an unsupported period policy name.
	ErrUnknownPolicy = errors.New("unknown period policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field of a rejected entry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entry: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrInvalidDay) ||
		errors.Is(err, ErrUnknownPolicy)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrUnknownPeriod)
}
