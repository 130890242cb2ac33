package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/engine/store"
)

func TestMemory_SaveLoadCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	empty, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	entries := []engine.TimeEntry{{
		ID:       "1",
		Date:     engine.MustParseDay("2024-03-01"),
		Location: engine.LocationRemote,
		TimeIn:   "08:00",
		TimeOut:  "10:00",
	}}
	require.NoError(t, m.Save(ctx, entries))

	entries[0].ID = "mutated"
	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "1", loaded[0].ID)
	assert.Equal(t, 1, m.Saves())
}

func TestMemory_FailWith(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := store.NewMemory()
	m.FailWith(boom)

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Save(ctx, nil), boom)

	m.FailWith(nil)
	assert.NoError(t, m.Save(ctx, nil))
}
