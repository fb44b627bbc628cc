package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/db"
	"github.com/alexanderramin/blocksched/internal/domain"
)

const taskColumns = `id, title, description, estimated_pomodoros, completed_pomodoros, status, created_at`

type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Title,
		nullableStrToValue(t.Description),
		nullableIntToValue(t.EstimatedPomodoros),
		t.CompletedPomodoros,
		string(t.Status),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY created_at, id`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("listing tasks by status: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, estimated_pomodoros = ?,
		completed_pomodoros = ?, status = ?
		WHERE id = ?`,
		t.Title,
		nullableStrToValue(t.Description),
		nullableIntToValue(t.EstimatedPomodoros),
		t.CompletedPomodoros,
		string(t.Status),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting task: %w", err)
	}
	return affected > 0, nil
}

func scanTask(row *sql.Row) (*domain.Task, error) {
	var (
		t                  domain.Task
		status, createdAt  string
		description        sql.NullString
		estimatedPomodoros sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Title, &description, &estimatedPomodoros, &t.CompletedPomodoros, &status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	if err := hydrateTask(&t, status, createdAt, description, estimatedPomodoros); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var (
			t                  domain.Task
			status, createdAt  string
			description        sql.NullString
			estimatedPomodoros sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &description, &estimatedPomodoros, &t.CompletedPomodoros, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		if err := hydrateTask(&t, status, createdAt, description, estimatedPomodoros); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func hydrateTask(t *domain.Task, status, createdAt string, description sql.NullString, estimatedPomodoros sql.NullInt64) error {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("parsing task created_at: %w", err)
	}
	t.CreatedAt = created
	t.Status = domain.TaskStatus(status)
	t.Description = nullableStr(description)
	t.EstimatedPomodoros = nullableInt(estimatedPomodoros)
	return nil
}
