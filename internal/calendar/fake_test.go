package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestFake_ListEvents_WindowOverlap(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	day := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	inside := f.Seed("standup", day.Add(9*time.Hour), day.Add(10*time.Hour))
	f.Seed("yesterday", day.Add(-10*time.Hour), day.Add(-9*time.Hour))
	straddling := f.Seed("overnight", day.Add(-time.Hour), day.Add(time.Hour))

	events, err := f.ListEvents(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, straddling, events[0].ID)
	assert.Equal(t, inside, events[1].ID)
}

func TestFake_GatewayRoundTrip(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	start := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	block := testutil.NewTestBlock(start)
	eventID, err := f.CreateDraftBlockEvent(ctx, block)
	require.NoError(t, err)

	block.StartAt = start.Add(time.Hour)
	block.EndAt = start.Add(2 * time.Hour)
	require.NoError(t, f.UpdateEvent(ctx, eventID, block))

	events, err := f.ListEvents(ctx, start.Add(-time.Hour), start.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].StartAt.Equal(start.Add(time.Hour)))

	require.NoError(t, f.DeleteEvent(ctx, eventID))
	events, err = f.ListEvents(ctx, start.Add(-time.Hour), start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Error(t, f.DeleteEvent(ctx, eventID))
}

func TestFake_ChangedSince(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	day := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	first := f.Seed("standup", day.Add(9*time.Hour), day.Add(10*time.Hour))

	changed, token, err := f.ChangedSince(ctx, "")
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, first, changed[0].ID)

	// No changes since the token.
	changed, token2, err := f.ChangedSince(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, token, token2)

	// A delete shows up as a Deleted event exactly once.
	require.NoError(t, f.Remove(first))
	changed, _, err = f.ChangedSince(ctx, token)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.True(t, changed[0].Deleted)
}
