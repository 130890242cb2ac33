// Package store provides an in-memory entry repository.
package store

import (
	"context"
	"sync"

	"github.com/warp/worklog-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the last saved snapshot. Save and Load copy, so callers never
// share a backing array with the store.
type Memory struct {
	mu      sync.RWMutex
	entries []engine.TimeEntry
	fail    error
	saves   int
}

func NewMemory(seed ...engine.TimeEntry) *Memory {
	return &Memory{entries: clone(seed)}
}

// Load returns the last saved snapshot.
func (m *Memory) Load(_ context.Context) ([]engine.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return clone(m.entries), nil
}

// Save replaces the snapshot.
func (m *Memory) Save(_ context.Context, entries []engine.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.entries = clone(entries)
	m.saves++
	return nil
}

// FailWith makes every following Load and Save return err. Pass nil to heal.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Saves counts successful Save calls.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func clone(entries []engine.TimeEntry) []engine.TimeEntry {
	out := make([]engine.TimeEntry, len(entries))
	copy(out, entries)
	return out
}
