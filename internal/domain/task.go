package domain

import (
	"fmt"
	"strings"
	"time"
)

// Task is a unit of work, not bound to a time interval. Assignment to a block
// happens at pomodoro start or by explicit user action, never earlier.
type Task struct {
	ID                 string
	Title              string
	Description        *string
	EstimatedPomodoros *int
	CompletedPomodoros int
	Status             TaskStatus
	CreatedAt          time.Time
}

// NewTask constructs a validated Task in the pending state.
func NewTask(id, title string, description *string, estimatedPomodoros *int, createdAt time.Time) (*Task, error) {
	t := &Task{
		ID:                 id,
		Title:              strings.TrimSpace(title),
		Description:        description,
		EstimatedPomodoros: estimatedPomodoros,
		Status:             TaskPending,
		CreatedAt:          createdAt,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task.id must not be empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task.title must not be empty")
	}
	if t.EstimatedPomodoros != nil && *t.EstimatedPomodoros < 0 {
		return fmt.Errorf("task.estimated_pomodoros must be >= 0")
	}
	if t.CompletedPomodoros < 0 {
		return fmt.Errorf("task.completed_pomodoros must be >= 0")
	}
	if !ValidTaskStatuses[string(t.Status)] {
		return fmt.Errorf("task.status %q is not a valid task status", t.Status)
	}
	return nil
}

// MarkInProgress transitions the task toward in_progress without ever
// downgrading a completed task.
func (t *Task) MarkInProgress() {
	if t.Status == TaskCompleted {
		return
	}
	t.Status = TaskInProgress
}
