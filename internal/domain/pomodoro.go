package domain

import (
	"fmt"
	"time"
)

// PomodoroLog records one focus/break/pause segment. Once EndTime is set the
// record is immutable except for explicit log deletion.
type PomodoroLog struct {
	ID                 string
	BlockID            string
	TaskID             *string
	Phase              PomodoroPhase
	StartTime          time.Time
	EndTime            *time.Time
	InterruptionReason *string
}

// NewPomodoroLog constructs a validated open log for the given phase.
func NewPomodoroLog(id, blockID string, taskID *string, phase PomodoroPhase, startTime time.Time) (*PomodoroLog, error) {
	l := &PomodoroLog{
		ID:        id,
		BlockID:   blockID,
		TaskID:    taskID,
		Phase:     phase,
		StartTime: startTime,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PomodoroLog) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("pomodoro.id must not be empty")
	}
	if l.BlockID == "" {
		return fmt.Errorf("pomodoro.block_id must not be empty")
	}
	if !ValidPomodoroPhases[string(l.Phase)] {
		return fmt.Errorf("pomodoro.phase %q is not a valid phase", l.Phase)
	}
	if l.EndTime != nil && l.EndTime.Before(l.StartTime) {
		return fmt.Errorf("pomodoro.end_time must be >= pomodoro.start_time")
	}
	return nil
}

// Close seals the log at endTime. Closing an already-closed log is rejected.
func (l *PomodoroLog) Close(endTime time.Time, interruptionReason *string) error {
	if l.EndTime != nil {
		return fmt.Errorf("pomodoro log %s is already closed", l.ID)
	}
	if endTime.Before(l.StartTime) {
		return fmt.Errorf("pomodoro.end_time must be >= pomodoro.start_time")
	}
	l.EndTime = &endTime
	l.InterruptionReason = interruptionReason
	return nil
}

// Closed reports whether the log has been sealed.
func (l *PomodoroLog) Closed() bool {
	return l.EndTime != nil
}

// FocusSeconds returns the closed focus duration in seconds, or 0 for open,
// non-focus, or non-positive segments.
func (l *PomodoroLog) FocusSeconds() int64 {
	if l.Phase != PhaseFocus || l.EndTime == nil {
		return 0
	}
	secs := int64(l.EndTime.Sub(l.StartTime).Seconds())
	if secs <= 0 {
		return 0
	}
	return secs
}
