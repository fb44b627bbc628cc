package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
)

const (
	defaultFocusSeconds = 1500
	defaultBreakSeconds = 300
)

// pomodoroTimer is the process-local timer. At most one session is active;
// all state lives behind the mutex, and every open log is closed through the
// repository before the timer returns to idle.
type pomodoroTimer struct {
	mu sync.Mutex

	logs   repository.PomodoroLogRepo
	blocks repository.BlockRepo
	clock  Clock

	focusSeconds int
	breakSeconds int

	session *timerSession
}

// timerSession tracks one active run. cursor is the logical current instant:
// it starts at the wall clock and advances with each tick, so log timestamps
// are exact multiples of the ticked seconds.
type timerSession struct {
	phase       domain.PomodoroPhase
	pausedPhase domain.PomodoroPhase
	remaining   int
	blockID     string
	taskID      *string
	openLog     *domain.PomodoroLog
	cursor      time.Time
}

type TimerOption func(*pomodoroTimer)

func WithTimerDurations(focusSeconds, breakSeconds int) TimerOption {
	return func(t *pomodoroTimer) {
		if focusSeconds > 0 {
			t.focusSeconds = focusSeconds
		}
		if breakSeconds > 0 {
			t.breakSeconds = breakSeconds
		}
	}
}

func WithClock(c Clock) TimerOption {
	return func(t *pomodoroTimer) { t.clock = c }
}

func NewPomodoroTimer(logs repository.PomodoroLogRepo, blocks repository.BlockRepo, opts ...TimerOption) PomodoroTimer {
	t := &pomodoroTimer{
		logs:         logs,
		blocks:       blocks,
		clock:        SystemClock{},
		focusSeconds: defaultFocusSeconds,
		breakSeconds: defaultBreakSeconds,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *pomodoroTimer) Start(ctx context.Context, blockID string, taskID *string) (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		return t.stateLocked(), ErrInvalidState
	}
	if _, err := t.blocks.GetByID(ctx, blockID); err != nil {
		return t.stateLocked(), err
	}

	now := t.clock.Now().UTC()
	log, err := domain.NewPomodoroLog(uuid.New().String(), blockID, taskID, domain.PhaseFocus, now)
	if err != nil {
		return t.stateLocked(), err
	}
	if err := t.logs.Create(ctx, log); err != nil {
		return t.stateLocked(), err
	}
	t.session = &timerSession{
		phase:     domain.PhaseFocus,
		remaining: t.focusSeconds,
		blockID:   blockID,
		taskID:    taskID,
		openLog:   log,
		cursor:    now,
	}
	return t.stateLocked(), nil
}

func (t *pomodoroTimer) Tick(ctx context.Context, seconds int) (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || t.session.phase == domain.PhasePaused || seconds <= 0 {
		return t.stateLocked(), nil
	}
	s := t.session

	// Clamp at the phase boundary; excess beyond it is discarded.
	if seconds > s.remaining {
		seconds = s.remaining
	}
	s.remaining -= seconds
	s.cursor = s.cursor.Add(time.Duration(seconds) * time.Second)
	if s.remaining > 0 {
		return t.stateLocked(), nil
	}

	switch s.phase {
	case domain.PhaseFocus:
		if err := t.closeOpenLog(ctx, nil); err != nil {
			return t.stateLocked(), err
		}
		log, err := domain.NewPomodoroLog(uuid.New().String(), s.blockID, s.taskID, domain.PhaseBreak, s.cursor)
		if err != nil {
			return t.stateLocked(), err
		}
		if err := t.logs.Create(ctx, log); err != nil {
			return t.stateLocked(), err
		}
		s.phase = domain.PhaseBreak
		s.remaining = t.breakSeconds
		s.openLog = log
	case domain.PhaseBreak:
		// The session terminates after one cycle rather than looping.
		if err := t.closeOpenLog(ctx, nil); err != nil {
			return t.stateLocked(), err
		}
		t.session = nil
	}
	return t.stateLocked(), nil
}

func (t *pomodoroTimer) Pause(ctx context.Context, reason *string) (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || s.phase == domain.PhasePaused {
		return t.stateLocked(), ErrInvalidState
	}
	r := "paused"
	if reason != nil {
		r = *reason
	}
	if err := t.closeOpenLog(ctx, &r); err != nil {
		return t.stateLocked(), err
	}
	s.pausedPhase = s.phase
	s.phase = domain.PhasePaused
	return t.stateLocked(), nil
}

func (t *pomodoroTimer) Resume(ctx context.Context) (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || s.phase != domain.PhasePaused {
		return t.stateLocked(), ErrInvalidState
	}
	log, err := domain.NewPomodoroLog(uuid.New().String(), s.blockID, s.taskID, s.pausedPhase, s.cursor)
	if err != nil {
		return t.stateLocked(), err
	}
	if err := t.logs.Create(ctx, log); err != nil {
		return t.stateLocked(), err
	}
	s.phase = s.pausedPhase
	s.pausedPhase = ""
	s.openLog = log
	return t.stateLocked(), nil
}

func (t *pomodoroTimer) Complete(ctx context.Context) (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return t.stateLocked(), nil
	}
	if err := t.closeOpenLog(ctx, nil); err != nil {
		return t.stateLocked(), err
	}
	t.session = nil
	return t.stateLocked(), nil
}

func (t *pomodoroTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *pomodoroTimer) stateLocked() TimerState {
	if t.session == nil {
		return TimerState{Idle: true}
	}
	s := t.session
	return TimerState{
		Phase:            s.phase,
		RemainingSeconds: s.remaining,
		BlockID:          s.blockID,
		TaskID:           s.taskID,
	}
}

// closeOpenLog writes the close for the session's open log at the logical
// cursor. A nil reason means the phase ended normally.
func (t *pomodoroTimer) closeOpenLog(ctx context.Context, reason *string) error {
	s := t.session
	if s.openLog == nil {
		return nil
	}
	if err := s.openLog.Close(s.cursor, reason); err != nil {
		return err
	}
	if err := t.logs.Update(ctx, s.openLog); err != nil {
		return err
	}
	s.openLog = nil
	return nil
}
