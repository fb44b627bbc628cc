package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/domain"
)

// Block options
type BlockOption func(*domain.Block)

func WithBlockStatus(s domain.BlockStatus) BlockOption {
	return func(b *domain.Block) {
		b.Status = s
	}
}

func WithFirmness(f domain.Firmness) BlockOption {
	return func(b *domain.Block) {
		b.Firmness = f
	}
}

func WithBlockType(t domain.BlockType) BlockOption {
	return func(b *domain.Block) {
		b.Type = t
	}
}

func WithSource(source domain.BlockSource, sourceID string) BlockOption {
	return func(b *domain.Block) {
		b.Source = source
		b.SourceID = &sourceID
	}
}

func WithInstance(instance string) BlockOption {
	return func(b *domain.Block) {
		b.Instance = instance
	}
}

func WithCalendarEventID(id string) BlockOption {
	return func(b *domain.Block) {
		b.CalendarEventID = &id
	}
}

func WithBlockTaskID(id string) BlockOption {
	return func(b *domain.Block) {
		b.TaskID = &id
	}
}

func WithTaskRefs(ids ...string) BlockOption {
	return func(b *domain.Block) {
		b.TaskRefs = ids
	}
}

func WithPlannedPomodoros(n int) BlockOption {
	return func(b *domain.Block) {
		b.PlannedPomodoros = n
	}
}

// NewTestBlock builds a manual one hour deep-work block starting at start.
func NewTestBlock(start time.Time, opts ...BlockOption) *domain.Block {
	id := uuid.New().String()
	b := &domain.Block{
		ID:               id,
		Instance:         domain.ManualInstance(id),
		Date:             start.Format(domain.DateLayout),
		StartAt:          start,
		EndAt:            start.Add(time.Hour),
		Type:             domain.BlockDeep,
		Firmness:         domain.FirmnessSoft,
		PlannedPomodoros: 1,
		Status:           domain.BlockPlanned,
		Source:           domain.SourceManual,
		CreatedAt:        time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithDescription(d string) TaskOption {
	return func(t *domain.Task) {
		t.Description = &d
	}
}

func WithEstimatedPomodoros(n int) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedPomodoros = &n
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    domain.TaskPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PomodoroLog options
type LogOption func(*domain.PomodoroLog)

func WithLogTaskID(id string) LogOption {
	return func(l *domain.PomodoroLog) {
		l.TaskID = &id
	}
}

func WithPhase(p domain.PomodoroPhase) LogOption {
	return func(l *domain.PomodoroLog) {
		l.Phase = p
	}
}

func WithClosedAt(end time.Time) LogOption {
	return func(l *domain.PomodoroLog) {
		l.EndTime = &end
	}
}

func WithInterruption(reason string) LogOption {
	return func(l *domain.PomodoroLog) {
		l.InterruptionReason = &reason
	}
}

// NewTestLog builds an open focus log attached to blockID.
func NewTestLog(blockID string, start time.Time, opts ...LogOption) *domain.PomodoroLog {
	l := &domain.PomodoroLog{
		ID:        uuid.New().String(),
		BlockID:   blockID,
		Phase:     domain.PhaseFocus,
		StartTime: start,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Routine options
type RoutineOption func(*domain.Routine)

func WithRoutineDays(days ...time.Weekday) RoutineOption {
	return func(r *domain.Routine) {
		r.Days = days
	}
}

func WithSkipDates(dates ...string) RoutineOption {
	return func(r *domain.Routine) {
		r.SkipDates = dates
	}
}

func WithCarryover() RoutineOption {
	return func(r *domain.Routine) {
		r.Carryover = true
	}
}

func WithRoutineFirmness(f domain.Firmness) RoutineOption {
	return func(r *domain.Routine) {
		r.Firmness = f
	}
}

// NewTestRoutine builds a weekday morning routine.
func NewTestRoutine(name string, opts ...RoutineOption) *domain.Routine {
	r := &domain.Routine{
		ID:              uuid.New().String(),
		Name:            name,
		Days:            []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Start:           "09:00",
		DurationMinutes: 50,
		Type:            domain.BlockDeep,
		Pomodoros:       1,
		Firmness:        domain.FirmnessDraft,
		CreatedAt:       time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
