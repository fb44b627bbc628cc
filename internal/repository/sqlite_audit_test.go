package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestAuditRepo_AppendAndListRecent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAuditRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "task_selected", map[string]any{
		"task_id":  "t1",
		"block_id": "b1",
	}))
	require.NoError(t, repo.Append(ctx, "task_split", map[string]any{
		"task_id": "t2",
		"parts":   3,
	}))

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "task_split", entries[0].EventType)
	assert.Equal(t, "task_selected", entries[1].EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[1].Payload), &payload))
	assert.Equal(t, "t1", payload["task_id"])
}

func TestAuditRepo_ListRecent_Limit(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAuditRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, "task_selected", nil))
	}
	entries, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAuditRepo_EmptyEventTypeRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAuditRepo(db)

	err := repo.Append(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestSyncStateRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSyncStateRepo(db)
	ctx := context.Background()

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.SyncToken)
	assert.True(t, state.LastSyncedAt.IsZero())

	token := "cursor-42"
	at := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &token, at))

	state, err = repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.SyncToken)
	assert.Equal(t, "cursor-42", *state.SyncToken)
	assert.True(t, state.LastSyncedAt.Equal(at))

	// Save again overwrites the singleton row.
	next := "cursor-43"
	require.NoError(t, repo.Save(ctx, &next, at.Add(time.Hour)))
	state, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor-43", *state.SyncToken)
}
