package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
)

type taskService struct {
	tasks    repository.TaskRepo
	blocks   repository.BlockRepo
	audit    repository.AuditRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepo, blocks repository.BlockRepo, audit repository.AuditRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TaskService {
	return &taskService{
		tasks:    tasks,
		blocks:   blocks,
		audit:    audit,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *taskService) CreateTask(ctx context.Context, title string, description *string, estimatedPomodoros *int) (*domain.Task, error) {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "create_task", startedAt, err, nil)
	}()

	task, err := domain.NewTask(uuid.New().String(), title, description, estimatedPomodoros, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err = s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *taskService) AssignTaskToBlock(ctx context.Context, taskID, blockID string) error {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "assign_task_to_block", startedAt, err, map[string]any{
			"task_id":  taskID,
			"block_id": blockID,
		})
	}()
	err = s.assign(ctx, taskID, blockID, "task_selected", nil)
	return err
}

// assign links task and block and writes the audit entry inside one
// transaction. extra fields are merged into the audit payload.
func (s *taskService) assign(ctx context.Context, taskID, blockID, auditEvent string, extra map[string]any) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txBlocks := repository.NewSQLiteBlockRepo(tx)
		txAudit := repository.NewSQLiteAuditRepo(tx)

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		block, err := txBlocks.GetByID(ctx, blockID)
		if err != nil {
			return err
		}

		task.MarkInProgress()
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		block.TaskID = &task.ID
		if !block.HasTaskRef(task.ID) {
			block.TaskRefs = append(block.TaskRefs, task.ID)
		}
		if err := txBlocks.Update(ctx, block); err != nil {
			return err
		}

		payload := map[string]any{
			"task_id":  task.ID,
			"block_id": block.ID,
		}
		for k, v := range extra {
			payload[k] = v
		}
		return txAudit.Append(ctx, auditEvent, payload)
	})
}

func (s *taskService) SplitTask(ctx context.Context, taskID string, parts int) ([]*domain.Task, error) {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "split_task", startedAt, err, map[string]any{
			"task_id": taskID,
			"parts":   parts,
		})
	}()

	if parts < 2 {
		err = fmt.Errorf("split requires at least 2 parts, got %d", parts)
		return nil, err
	}

	var children []*domain.Task
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txAudit := repository.NewSQLiteAuditRepo(tx)

		parent, txErr := txTasks.GetByID(ctx, taskID)
		if txErr != nil {
			return txErr
		}

		var childEstimate *int
		if parent.EstimatedPomodoros != nil {
			e := (*parent.EstimatedPomodoros + parts - 1) / parts
			childEstimate = &e
		}

		childIDs := make([]string, 0, parts)
		for i := 1; i <= parts; i++ {
			title := fmt.Sprintf("%s (%d/%d)", parent.Title, i, parts)
			child, buildErr := domain.NewTask(uuid.New().String(), title, parent.Description, childEstimate, s.now().UTC())
			if buildErr != nil {
				return buildErr
			}
			if txErr = txTasks.Create(ctx, child); txErr != nil {
				return txErr
			}
			children = append(children, child)
			childIDs = append(childIDs, child.ID)
		}

		parent.Status = domain.TaskDeferred
		if txErr = txTasks.Update(ctx, parent); txErr != nil {
			return txErr
		}
		return txAudit.Append(ctx, "task_split", map[string]any{
			"task_id":   parent.ID,
			"parts":     parts,
			"child_ids": childIDs,
		})
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

func (s *taskService) CarryOverTask(ctx context.Context, taskID, fromBlockID, date string) (string, error) {
	startedAt := time.Now()
	var err error
	var chosen string
	defer func() {
		observe(ctx, s.observer, "carry_over_task", startedAt, err, map[string]any{
			"task_id":    taskID,
			"from_block": fromBlockID,
			"to_block":   chosen,
		})
	}()

	candidates, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return "", err
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].StartAt.Before(candidates[j].StartAt)
	})

	for _, c := range candidates {
		if c.ID == fromBlockID || c.TaskID != nil {
			continue
		}
		if err = s.assign(ctx, taskID, c.ID, "task_carried_over", map[string]any{
			"from_block": fromBlockID,
		}); err != nil {
			return "", err
		}
		chosen = c.ID
		return chosen, nil
	}
	err = fmt.Errorf("no free block on %s to carry task %s over to", date, taskID)
	return "", err
}

func (s *taskService) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	startedAt := time.Now()
	var existed bool
	var err error
	defer func() {
		observe(ctx, s.observer, "delete_task", startedAt, err, map[string]any{
			"task_id": taskID,
			"existed": existed,
		})
	}()

	// Foreign keys handle the cascades: refs and logs go, block.task_id nulls.
	existed, err = s.tasks.Delete(ctx, taskID)
	return existed, err
}
