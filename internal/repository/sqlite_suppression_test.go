package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestSuppressionRepo_RecordAndCheck(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSuppressionRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	reason := "user deleted"
	require.NoError(t, repo.Record(ctx, "routine:r1:2026-02-16:0", &reason, at))

	suppressed, err := repo.IsSuppressed(ctx, "routine:r1:2026-02-16:0")
	require.NoError(t, err)
	assert.True(t, suppressed)

	suppressed, err = repo.IsSuppressed(ctx, "routine:r1:2026-02-17:0")
	require.NoError(t, err)
	assert.False(t, suppressed)
}

func TestSuppressionRepo_RecordTwice_FirstWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSuppressionRepo(db)
	ctx := context.Background()

	first := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Record(ctx, "manual:b1", nil, first))
	require.NoError(t, repo.Record(ctx, "manual:b1", nil, first.Add(time.Hour)))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].SuppressedAt.Equal(first))
	assert.Nil(t, entries[0].Reason)
}

func TestSuppressionRepo_Clear(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSuppressionRepo(db)
	ctx := context.Background()

	at := time.Now().UTC()
	require.NoError(t, repo.Record(ctx, "manual:b1", nil, at))
	require.NoError(t, repo.Record(ctx, "manual:b2", nil, at))

	require.NoError(t, repo.Clear(ctx, "manual:b1"))
	suppressed, err := repo.IsSuppressed(ctx, "manual:b1")
	require.NoError(t, err)
	assert.False(t, suppressed)

	require.NoError(t, repo.ClearAll(ctx))
	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSuppressionRepo_EmptyInstanceRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSuppressionRepo(db)
	ctx := context.Background()

	err := repo.Record(ctx, "", nil, time.Now().UTC())
	assert.Error(t, err)
}
