package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestTaskRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	task := testutil.NewTestTask("write chapter",
		testutil.WithDescription("first draft"),
		testutil.WithEstimatedPomodoros(4))
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write chapter", fetched.Title)
	assert.Equal(t, domain.TaskPending, fetched.Status)
	require.NotNil(t, fetched.Description)
	assert.Equal(t, "first draft", *fetched.Description)
	require.NotNil(t, fetched.EstimatedPomodoros)
	assert.Equal(t, 4, *fetched.EstimatedPomodoros)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_ListByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	pending := testutil.NewTestTask("pending one")
	done := testutil.NewTestTask("done one", testutil.WithTaskStatus(domain.TaskCompleted))
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, done))

	tasks, err := repo.ListByStatus(ctx, domain.TaskPending)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, pending.ID, tasks[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTaskRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	task := testutil.NewTestTask("draft")
	require.NoError(t, repo.Create(ctx, task))

	task.Status = domain.TaskInProgress
	task.Title = "draft v2"
	require.NoError(t, repo.Update(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, fetched.Status)
	assert.Equal(t, "draft v2", fetched.Title)
}

func TestTaskRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	task := testutil.NewTestTask("gone soon")
	require.NoError(t, repo.Create(ctx, task))

	deleted, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
