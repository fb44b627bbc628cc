package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

type taskHarness struct {
	db     *sql.DB
	svc    TaskService
	tasks  *repository.SQLiteTaskRepo
	blocks *repository.SQLiteBlockRepo
	audit  *repository.SQLiteAuditRepo
}

func newTaskHarness(t *testing.T) *taskHarness {
	database := testutil.NewTestDB(t)
	tasks := repository.NewSQLiteTaskRepo(database)
	blocks := repository.NewSQLiteBlockRepo(database)
	audit := repository.NewSQLiteAuditRepo(database)
	return &taskHarness{
		db:     database,
		svc:    NewTaskService(tasks, blocks, audit, testutil.NewTestUoW(database)),
		tasks:  tasks,
		blocks: blocks,
		audit:  audit,
	}
}

func (h *taskHarness) auditTypes(t *testing.T) []string {
	t.Helper()
	entries, err := h.audit.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.EventType)
	}
	return types
}

func TestTaskService_CreateTask(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	est := 4
	task, err := h.svc.CreateTask(ctx, "  write report  ", nil, &est)
	require.NoError(t, err)
	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, domain.TaskPending, task.Status)

	stored, err := h.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EstimatedPomodoros)
	assert.Equal(t, 4, *stored.EstimatedPomodoros)
}

func TestTaskService_CreateTask_EmptyTitle(t *testing.T) {
	h := newTaskHarness(t)

	_, err := h.svc.CreateTask(context.Background(), "   ", nil, nil)
	assert.Error(t, err)
}

func TestTaskService_AssignTaskToBlock(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	task := testutil.NewTestTask("write report")
	require.NoError(t, h.tasks.Create(ctx, task))
	block := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, h.blocks.Create(ctx, block))

	require.NoError(t, h.svc.AssignTaskToBlock(ctx, task.ID, block.ID))

	storedTask, err := h.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, storedTask.Status)

	storedBlock, err := h.blocks.GetByID(ctx, block.ID)
	require.NoError(t, err)
	require.NotNil(t, storedBlock.TaskID)
	assert.Equal(t, task.ID, *storedBlock.TaskID)
	assert.Contains(t, storedBlock.TaskRefs, task.ID)

	assert.Contains(t, h.auditTypes(t), "task_selected")
}

func TestTaskService_AssignKeepsCompletedStatus(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	task := testutil.NewTestTask("done already", testutil.WithTaskStatus(domain.TaskCompleted))
	require.NoError(t, h.tasks.Create(ctx, task))
	block := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, h.blocks.Create(ctx, block))

	require.NoError(t, h.svc.AssignTaskToBlock(ctx, task.ID, block.ID))

	stored, err := h.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, stored.Status)
}

func TestTaskService_AssignUnknownIDs(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	block := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, h.blocks.Create(ctx, block))
	task := testutil.NewTestTask("real")
	require.NoError(t, h.tasks.Create(ctx, task))

	err := h.svc.AssignTaskToBlock(ctx, "missing", block.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	err = h.svc.AssignTaskToBlock(ctx, task.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskService_SplitTask(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	est := 7
	parent := testutil.NewTestTask("thesis chapter", testutil.WithEstimatedPomodoros(est))
	require.NoError(t, h.tasks.Create(ctx, parent))

	children, err := h.svc.SplitTask(ctx, parent.ID, 3)
	require.NoError(t, err)
	require.Len(t, children, 3)

	assert.Equal(t, "thesis chapter (1/3)", children[0].Title)
	assert.Equal(t, "thesis chapter (3/3)", children[2].Title)
	for _, c := range children {
		require.NotNil(t, c.EstimatedPomodoros)
		assert.Equal(t, 3, *c.EstimatedPomodoros, "7 pomodoros over 3 parts rounds up")
		assert.Equal(t, domain.TaskPending, c.Status)
	}

	storedParent, err := h.tasks.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskDeferred, storedParent.Status)

	assert.Contains(t, h.auditTypes(t), "task_split")
}

func TestTaskService_SplitTask_TooFewParts(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	parent := testutil.NewTestTask("tiny")
	require.NoError(t, h.tasks.Create(ctx, parent))

	_, err := h.svc.SplitTask(ctx, parent.ID, 1)
	assert.Error(t, err)
}

func TestTaskService_SplitTask_RollsBackOnFailure(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	parent := testutil.NewTestTask("fragile")
	require.NoError(t, h.tasks.Create(ctx, parent))

	// Fail on the parent update, after all three children were inserted.
	failing := &testutil.FailOnNthExecUoW{
		DB:     h.db,
		FailOn: 4,
		Err:    errors.New("disk full"),
	}
	svc := NewTaskService(h.tasks, h.blocks, h.audit, failing)

	_, err := svc.SplitTask(ctx, parent.ID, 3)
	require.ErrorContains(t, err, "disk full")

	tasks, err := h.tasks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "failed split must leave no children behind")

	stored, err := h.tasks.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, stored.Status)
}

func TestTaskService_CarryOverTask(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	task := testutil.NewTestTask("unfinished")
	require.NoError(t, h.tasks.Create(ctx, task))

	from := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, h.blocks.Create(ctx, from))

	// Tomorrow holds one occupied block and two free ones; the earliest free
	// block wins.
	other := testutil.NewTestTask("other work")
	require.NoError(t, h.tasks.Create(ctx, other))
	taken := testutil.NewTestBlock(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), testutil.WithBlockTaskID(other.ID))
	free1 := testutil.NewTestBlock(time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC))
	free2 := testutil.NewTestBlock(time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC))
	for _, b := range []*domain.Block{taken, free1, free2} {
		require.NoError(t, h.blocks.Create(ctx, b))
	}

	chosen, err := h.svc.CarryOverTask(ctx, task.ID, from.ID, "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, free1.ID, chosen)

	stored, err := h.blocks.GetByID(ctx, free1.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TaskID)
	assert.Equal(t, task.ID, *stored.TaskID)

	assert.Contains(t, h.auditTypes(t), "task_carried_over")
}

func TestTaskService_CarryOverTask_NoFreeBlock(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	task := testutil.NewTestTask("unfinished")
	require.NoError(t, h.tasks.Create(ctx, task))

	_, err := h.svc.CarryOverTask(ctx, task.ID, "block-1", "2026-03-03")
	assert.ErrorContains(t, err, "no free block")
}

func TestTaskService_DeleteTask(t *testing.T) {
	h := newTaskHarness(t)
	ctx := context.Background()

	task := testutil.NewTestTask("short lived")
	require.NoError(t, h.tasks.Create(ctx, task))
	block := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), testutil.WithBlockTaskID(task.ID))
	require.NoError(t, h.blocks.Create(ctx, block))

	existed, err := h.svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	stored, err := h.blocks.GetByID(ctx, block.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TaskID, "deleting the task detaches the block")

	existed, err = h.svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}
