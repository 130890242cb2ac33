/*
Package jsonfile stores the entry collection as one JSON document per
storage key.

PURPOSE:
  File-backed analogue of a browser key-value store: the key names the file,
  the value is the JSON array of entries. Files written by older clients
  (timestamp dates, display-label locations) load transparently. Records
  that cannot be read at all are kept aside and written back unchanged, so
  a save never drops data the store did not understand.

LAYOUT:
  <dir>/<key>.json          current snapshot
  <dir>/<key>.json.tmp      in-flight write, renamed over the snapshot
  <dir>/<key>.json.corrupt  unreadable snapshot moved aside on Load

SEE ALSO:
  - timesheet/repository.go: Contract implemented here
  - store/sqlite/sqlite.go: Relational alternative
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/worklog-engine/engine"
)

// Store implements timesheet.Repository on the local filesystem.
type Store struct {
	path string
	loc  *time.Location
	log  zerolog.Logger
	mu   sync.Mutex

	// unreadable holds records from the last Load, verbatim.
	unreadable []json.RawMessage
}

// New returns a store for key under dir. loc converts timestamp dates found
// in existing files into calendar days.
func New(dir, key string, loc *time.Location, log zerolog.Logger) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		path: filepath.Join(dir, key+".json"),
		loc:  loc,
		log:  log.With().Str("component", "jsonfile").Str("path", filepath.Join(dir, key+".json")).Logger(),
	}, nil
}

// Path is the snapshot file location.
func (s *Store) Path() string { return s.path }

// record is the on-disk shape. Fields stay strings so legacy values can be
// normalised per record.
type record struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Location string `json:"location"`
	TimeIn   string `json:"timeIn"`
	TimeOut  string `json:"timeOut"`
}

// Load reads the snapshot. A missing file is an empty collection. A file that
// is not a JSON array is moved aside and reported as an error. Records with
// an unreadable date or location are left out of the result but kept for the
// next Save.
func (s *Store) Load(_ context.Context) ([]engine.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unreadable = nil

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []engine.TimeEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", s.path, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		backupPath := s.path + ".corrupt"
		_ = os.Rename(s.path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", s.path, backupPath, err)
	}

	entries := make([]engine.TimeEntry, 0, len(raws))
	for _, raw := range raws {
		var r record
		err := json.Unmarshal(raw, &r)
		var e engine.TimeEntry
		if err == nil {
			e, err = r.entry(s.loc)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("id", r.ID).Msg("keeping unreadable entry aside")
			s.unreadable = append(s.unreadable, raw)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r record) entry(loc *time.Location) (engine.TimeEntry, error) {
	day, err := engine.ParseDay(r.Date, loc)
	if err != nil {
		return engine.TimeEntry{}, fmt.Errorf("date %q: %w", r.Date, err)
	}
	location, err := engine.ParseLocation(r.Location)
	if err != nil {
		return engine.TimeEntry{}, err
	}
	return engine.TimeEntry{ID: r.ID, Date: day, Location: location, TimeIn: r.TimeIn, TimeOut: r.TimeOut}, nil
}

// Save atomically replaces the snapshot.
func (s *Store) Save(_ context.Context, entries []engine.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	raws := make([]json.RawMessage, 0, len(entries)+len(s.unreadable))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("storage error marshalling entry %s: %w", e.ID, err)
		}
		raws = append(raws, raw)
	}
	raws = append(raws, s.unreadable...)

	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
