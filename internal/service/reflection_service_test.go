package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/repository"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

func newReflectionHarness(t *testing.T) (ReflectionService, *repository.SQLitePomodoroLogRepo, *domain.Block) {
	db := testutil.NewTestDB(t)
	blocks := repository.NewSQLiteBlockRepo(db)
	logs := repository.NewSQLitePomodoroLogRepo(db)

	block := testutil.NewTestBlock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, blocks.Create(context.Background(), block))
	return NewReflectionService(logs), logs, block
}

func TestReflectionService_Aggregate(t *testing.T) {
	svc, logs, block := newReflectionHarness(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Completed focus: closed, no interruption.
	done := testutil.NewTestLog(block.ID, day.Add(9*time.Hour),
		testutil.WithClosedAt(day.Add(9*time.Hour+25*time.Minute)))
	// Interrupted focus: closed with a reason.
	cut := testutil.NewTestLog(block.ID, day.Add(10*time.Hour),
		testutil.WithClosedAt(day.Add(10*time.Hour+10*time.Minute)),
		testutil.WithInterruption("doorbell"))
	// Break logs never add focus time.
	brk := testutil.NewTestLog(block.ID, day.Add(11*time.Hour),
		testutil.WithPhase(domain.PhaseBreak),
		testutil.WithClosedAt(day.Add(11*time.Hour+5*time.Minute)))
	// Still open: neither completed nor counted.
	open := testutil.NewTestLog(block.ID, day.Add(12*time.Hour))
	for _, l := range []*domain.PomodoroLog{done, cut, brk, open} {
		require.NoError(t, logs.Create(ctx, l))
	}

	summary, err := svc.Aggregate(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Equal(t, 1, summary.InterruptedCount)
	assert.Equal(t, 25*60+10*60, summary.TotalFocusSeconds)
	assert.Len(t, summary.Logs, 4)
}

func TestReflectionService_Aggregate_RangeExcludesOutside(t *testing.T) {
	svc, logs, block := newReflectionHarness(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	inside := testutil.NewTestLog(block.ID, day.Add(9*time.Hour),
		testutil.WithClosedAt(day.Add(9*time.Hour+25*time.Minute)))
	before := testutil.NewTestLog(block.ID, day.Add(-2*time.Hour),
		testutil.WithClosedAt(day.Add(-time.Hour)))
	for _, l := range []*domain.PomodoroLog{inside, before} {
		require.NoError(t, logs.Create(ctx, l))
	}

	summary, err := svc.Aggregate(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Len(t, summary.Logs, 1)
}

func TestReflectionService_Aggregate_InvalidRange(t *testing.T) {
	svc, _, _ := newReflectionHarness(t)

	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Aggregate(context.Background(), at, at)
	assert.Error(t, err)
}

// TestReflectionService_Property_AggregationExactness generates random log
// sets and checks the summary against an independently computed expectation.
func TestReflectionService_Property_AggregationExactness(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	ctx := context.Background()

	for trial := 0; trial < 30; trial++ {
		svc, logs, block := newReflectionHarness(t)
		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

		wantCompleted, wantInterrupted, wantFocus := 0, 0, 0
		n := 1 + rng.Intn(20)
		for i := 0; i < n; i++ {
			start := day.Add(time.Duration(rng.Intn(20*3600)) * time.Second)
			opts := []testutil.LogOption{}

			phase := domain.PhaseFocus
			if rng.Intn(3) == 0 {
				phase = domain.PhaseBreak
				opts = append(opts, testutil.WithPhase(phase))
			}
			closed := rng.Intn(4) != 0
			durSecs := 60 + rng.Intn(3000)
			if closed {
				opts = append(opts, testutil.WithClosedAt(start.Add(time.Duration(durSecs)*time.Second)))
			}
			interrupted := closed && rng.Intn(3) == 0
			if interrupted {
				opts = append(opts, testutil.WithInterruption("random stop"))
			}
			require.NoError(t, logs.Create(ctx, testutil.NewTestLog(block.ID, start, opts...)))

			switch {
			case interrupted:
				wantInterrupted++
			case phase == domain.PhaseFocus && closed:
				wantCompleted++
			}
			if phase == domain.PhaseFocus && closed {
				wantFocus += durSecs
			}
		}

		summary, err := svc.Aggregate(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, wantCompleted, summary.CompletedCount, "trial %d", trial)
		assert.Equal(t, wantInterrupted, summary.InterruptedCount, "trial %d", trial)
		assert.Equal(t, wantFocus, summary.TotalFocusSeconds, "trial %d", trial)
		assert.Len(t, summary.Logs, n, "trial %d", trial)
	}
}
