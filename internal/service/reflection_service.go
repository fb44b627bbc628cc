package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
)

type reflectionService struct {
	logs     repository.PomodoroLogRepo
	observer UseCaseObserver
}

func NewReflectionService(logs repository.PomodoroLogRepo, observers ...UseCaseObserver) ReflectionService {
	return &reflectionService{logs: logs, observer: useCaseObserverOrNoop(observers)}
}

// Aggregate summarizes the logs whose start time falls within [start, end].
// A completed pomodoro is a closed focus log without an interruption; any log
// with an interruption reason counts as interrupted.
func (s *reflectionService) Aggregate(ctx context.Context, start, end time.Time) (*ReflectionSummary, error) {
	startedAt := time.Now()
	var err error
	defer func() {
		observe(ctx, s.observer, "aggregate_reflection", startedAt, err, map[string]any{
			"from": start.Format(time.RFC3339),
			"to":   end.Format(time.RFC3339),
		})
	}()

	if !end.After(start) {
		err = fmt.Errorf("reflection range end must be after start")
		return nil, err
	}
	logs, err := s.logs.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &ReflectionSummary{Logs: logs}
	for _, l := range logs {
		if l.InterruptionReason != nil {
			summary.InterruptedCount++
		} else if l.Phase == domain.PhaseFocus && l.Closed() {
			summary.CompletedCount++
		}
		summary.TotalFocusSeconds += int(l.FocusSeconds())
	}
	return summary, nil
}
