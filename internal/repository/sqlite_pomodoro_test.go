package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestPomodoroLogRepo_CreateAndClose(t *testing.T) {
	db := testutil.NewTestDB(t)
	blockRepo := NewSQLiteBlockRepo(db)
	repo := NewSQLitePomodoroLogRepo(db)
	ctx := context.Background()

	start := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	block := testutil.NewTestBlock(start)
	require.NoError(t, blockRepo.Create(ctx, block))

	log := testutil.NewTestLog(block.ID, start)
	require.NoError(t, repo.Create(ctx, log))

	fetched, err := repo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, block.ID, fetched.BlockID)
	assert.Equal(t, domain.PhaseFocus, fetched.Phase)
	assert.Nil(t, fetched.EndTime)

	end := start.Add(25 * time.Minute)
	require.NoError(t, fetched.Close(end, nil))
	require.NoError(t, repo.Update(ctx, fetched))

	closed, err := repo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.True(t, closed.EndTime.Equal(end))
	assert.Nil(t, closed.InterruptionReason)
}

func TestPomodoroLogRepo_ListRange(t *testing.T) {
	db := testutil.NewTestDB(t)
	blockRepo := NewSQLiteBlockRepo(db)
	repo := NewSQLitePomodoroLogRepo(db)
	ctx := context.Background()

	start := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	block := testutil.NewTestBlock(start)
	require.NoError(t, blockRepo.Create(ctx, block))

	inside := testutil.NewTestLog(block.ID, start.Add(time.Hour))
	before := testutil.NewTestLog(block.ID, start.Add(-48*time.Hour))
	boundary := testutil.NewTestLog(block.ID, start)
	require.NoError(t, repo.Create(ctx, inside))
	require.NoError(t, repo.Create(ctx, before))
	require.NoError(t, repo.Create(ctx, boundary))

	logs, err := repo.ListRange(ctx, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Ordered by start time; the boundary log starts exactly at the range start.
	assert.Equal(t, boundary.ID, logs[0].ID)
	assert.Equal(t, inside.ID, logs[1].ID)
}

func TestPomodoroLogRepo_ListByBlock(t *testing.T) {
	db := testutil.NewTestDB(t)
	blockRepo := NewSQLiteBlockRepo(db)
	repo := NewSQLitePomodoroLogRepo(db)
	ctx := context.Background()

	start := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	b1 := testutil.NewTestBlock(start)
	b2 := testutil.NewTestBlock(start.Add(2 * time.Hour))
	require.NoError(t, blockRepo.Create(ctx, b1))
	require.NoError(t, blockRepo.Create(ctx, b2))

	require.NoError(t, repo.Create(ctx, testutil.NewTestLog(b1.ID, start)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestLog(b2.ID, start.Add(2*time.Hour))))

	logs, err := repo.ListByBlock(ctx, b1.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, b1.ID, logs[0].BlockID)
}

func TestPomodoroLogRepo_InterruptionRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	blockRepo := NewSQLiteBlockRepo(db)
	repo := NewSQLitePomodoroLogRepo(db)
	ctx := context.Background()

	start := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	block := testutil.NewTestBlock(start)
	require.NoError(t, blockRepo.Create(ctx, block))

	end := start.Add(10 * time.Minute)
	log := testutil.NewTestLog(block.ID, start,
		testutil.WithClosedAt(end),
		testutil.WithInterruption("phone call"))
	require.NoError(t, repo.Create(ctx, log))

	fetched, err := repo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.InterruptionReason)
	assert.Equal(t, "phone call", *fetched.InterruptionReason)
}
