// Package service implements the application use cases over the repositories:
// block operations, planning orchestration, task management, the pomodoro
// timer, and reflection aggregation.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// ErrInvalidState is returned by the pomodoro timer when an event is not
// legal in the current phase.
var ErrInvalidState = errors.New("invalid timer state")

// BlockService mutates individual blocks and keeps the external mirror in
// step.
type BlockService interface {
	// CreateManualBlock stores a user-created block and mirrors it when a
	// gateway is configured.
	CreateManualBlock(ctx context.Context, date string, startAt, endAt time.Time, blockType domain.BlockType, plannedPomodoros int) (*domain.Block, error)
	// ApproveBlocks promotes each existing block to soft firmness and pushes
	// mirrored blocks to the calendar. Unknown ids are skipped.
	ApproveBlocks(ctx context.Context, ids []string) ([]*domain.Block, error)
	// DeleteBlock suppresses the block's instance, removes the mirror if any,
	// then deletes locally. Returns false when the block did not exist.
	DeleteBlock(ctx context.Context, id string) (bool, error)
	AdjustBlockTime(ctx context.Context, id string, startAt, endAt time.Time) (*domain.Block, error)
	GetBlock(ctx context.Context, id string) (*domain.Block, error)
	ListBlocksForDate(ctx context.Context, date string) ([]*domain.Block, error)
}

// PlanningService orchestrates generation, mirroring and relocation for one
// date.
type PlanningService interface {
	// GenerateForDate runs routine and manual-option generation against the
	// remote events of date, persists new blocks, and mirrors them when a
	// gateway is configured.
	GenerateForDate(ctx context.Context, date string) ([]*domain.Block, error)
	// RelocateIfNeeded moves the block to the first free slot of its date if
	// it currently overlaps a remote event. A nil block with ok=false means
	// no capacity; a manual_adjustment_required notification has been sent.
	RelocateIfNeeded(ctx context.Context, blockID string) (*domain.Block, bool, error)
	// Sync fetches changed remote events and reconciles local state.
	Sync(ctx context.Context, windowDays int) (added, updated, deleted int, err error)
}

// TaskService is the task lifecycle manager.
type TaskService interface {
	CreateTask(ctx context.Context, title string, description *string, estimatedPomodoros *int) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	AssignTaskToBlock(ctx context.Context, taskID, blockID string) error
	// SplitTask creates parts pending children and defers the parent.
	SplitTask(ctx context.Context, taskID string, parts int) ([]*domain.Task, error)
	// CarryOverTask reassigns the task to the first free candidate block of
	// date, in ascending start order. Returns the chosen block id.
	CarryOverTask(ctx context.Context, taskID, fromBlockID, date string) (string, error)
	DeleteTask(ctx context.Context, taskID string) (bool, error)
}

// TimerState is a snapshot of the pomodoro timer.
type TimerState struct {
	Phase            domain.PomodoroPhase
	Idle             bool
	RemainingSeconds int
	BlockID          string
	TaskID           *string
}

// PomodoroTimer is the focus/break/pause state machine. One session per
// process.
type PomodoroTimer interface {
	Start(ctx context.Context, blockID string, taskID *string) (TimerState, error)
	Tick(ctx context.Context, seconds int) (TimerState, error)
	Pause(ctx context.Context, reason *string) (TimerState, error)
	Resume(ctx context.Context) (TimerState, error)
	Complete(ctx context.Context) (TimerState, error)
	State() TimerState
}

// ReflectionSummary aggregates pomodoro logs over a range.
type ReflectionSummary struct {
	CompletedCount    int
	InterruptedCount  int
	TotalFocusSeconds int
	Logs              []*domain.PomodoroLog
}

type ReflectionService interface {
	Aggregate(ctx context.Context, start, end time.Time) (*ReflectionSummary, error)
}

// Clock abstracts time for the timer so tests are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
