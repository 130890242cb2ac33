package engine

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// LOCATION - Closed set of places a session can be worked from
// =============================================================================

// Location is the canonical, vocabulary-independent key of a work location.
type Location string

const (
	LocationRemote Location = "remote"
	LocationOnSite Location = "onsite"
)

// Locations lists the closed set in display order.
var Locations = []Location{LocationRemote, LocationOnSite}

// Vocabulary maps canonical locations to display labels.
type Vocabulary struct {
	Name   string
	Remote string
	OnSite string
}

var (
	VocabularySpanish = Vocabulary{Name: "es", Remote: "Remoto", OnSite: "Tienda"}
	VocabularyEnglish = Vocabulary{Name: "en", Remote: "Remote", OnSite: "Office"}
)

// Vocabularies are all known label sets, used when parsing stored data.
var Vocabularies = []Vocabulary{VocabularySpanish, VocabularyEnglish}

// LookupVocabulary resolves a configured vocabulary name.
func LookupVocabulary(name string) (Vocabulary, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return VocabularySpanish, nil
	}
	for _, v := range Vocabularies {
		if v.Name == name {
			return v, nil
		}
	}
	return Vocabulary{}, fmt.Errorf("unknown location vocabulary %q", name)
}

// Label returns the display label for loc, or the raw key if loc is unknown.
func (v Vocabulary) Label(loc Location) string {
	switch loc {
	case LocationRemote:
		return v.Remote
	case LocationOnSite:
		return v.OnSite
	default:
		return string(loc)
	}
}

// ParseLocation accepts canonical keys and every label of every vocabulary,
// case-insensitively.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	for _, loc := range Locations {
		if strings.EqualFold(s, string(loc)) {
			return loc, nil
		}
	}
	for _, v := range Vocabularies {
		switch {
		case strings.EqualFold(s, v.Remote):
			return LocationRemote, nil
		case strings.EqualFold(s, v.OnSite):
			return LocationOnSite, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLocation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l), nil
}

// UnmarshalText normalises any known label to its canonical key.
func (l *Location) UnmarshalText(b []byte) error {
	parsed, err := ParseLocation(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// =============================================================================
// TIME ENTRY - One recorded work session
// =============================================================================

// TimeEntry is immutable once created. TimeIn/TimeOut are wall-clock "HH:MM"
// values on Date; no ordering between them is enforced.
type TimeEntry struct {
	ID       string   `json:"id"`
	Date     Day      `json:"date"`
	Location Location `json:"location"`
	TimeIn   string   `json:"timeIn"`
	TimeOut  string   `json:"timeOut"`
}

// Duration is CalculateDuration over the entry's times.
func (e TimeEntry) Duration() Duration {
	return CalculateDuration(e.TimeIn, e.TimeOut)
}

// =============================================================================
// FILTER / AGGREGATE
// =============================================================================

// FilterEntriesByPeriod returns the entries whose day lies inside period,
// bounds inclusive, most recent first. Entries on the same day are ordered by
// ID so the result is deterministic. The input slice is never modified.
//
// A nil or invalid period yields an empty result.
func FilterEntriesByPeriod(entries []TimeEntry, period *Period) []TimeEntry {
	filtered := []TimeEntry{}
	if period == nil || !period.Valid() {
		return filtered
	}
	for _, e := range entries {
		if period.Contains(e.Date) {
			filtered = append(filtered, e)
		}
	}
	SortEntries(filtered)
	return filtered
}

// SortEntries orders entries by date descending, then ID ascending.
func SortEntries(entries []TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
}

// CalculateTotalMinutes sums entry durations. Entries with missing or invalid
// times contribute zero.
func CalculateTotalMinutes(entries []TimeEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Duration().TotalMinutes()
	}
	return total
}
