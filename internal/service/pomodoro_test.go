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

// fixedClock always returns the same instant; the timer advances its own
// logical cursor from there.
type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

type timerHarness struct {
	timer PomodoroTimer
	logs  *repository.SQLitePomodoroLogRepo
	block *domain.Block
	t0    time.Time
}

func newTimerHarness(t *testing.T, opts ...TimerOption) *timerHarness {
	db := testutil.NewTestDB(t)
	blocks := repository.NewSQLiteBlockRepo(db)
	logs := repository.NewSQLitePomodoroLogRepo(db)

	t0 := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	block := testutil.NewTestBlock(t0)
	require.NoError(t, blocks.Create(context.Background(), block))

	opts = append([]TimerOption{WithClock(fixedClock{at: t0})}, opts...)
	return &timerHarness{
		timer: NewPomodoroTimer(logs, blocks, opts...),
		logs:  logs,
		block: block,
		t0:    t0,
	}
}

func TestPomodoroTimer_StartOpensFocusLog(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	state, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFocus, state.Phase)
	assert.Equal(t, defaultFocusSeconds, state.RemainingSeconds)
	assert.Equal(t, h.block.ID, state.BlockID)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.PhaseFocus, logs[0].Phase)
	assert.Nil(t, logs[0].EndTime)
}

func TestPomodoroTimer_StartWhileActiveFails(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Start(ctx, h.block.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPomodoroTimer_StartUnknownBlockFails(t *testing.T) {
	h := newTimerHarness(t)

	_, err := h.timer.Start(context.Background(), "nonexistent", nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.True(t, h.timer.State().Idle)
}

func TestPomodoroTimer_FocusToBreakClosesLogAtBoundary(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)

	state, err := h.timer.Tick(ctx, defaultFocusSeconds)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseBreak, state.Phase)
	assert.Equal(t, defaultBreakSeconds, state.RemainingSeconds)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	focus, brk := logs[0], logs[1]
	require.NotNil(t, focus.EndTime)
	assert.True(t, focus.EndTime.Equal(h.t0.Add(defaultFocusSeconds*time.Second)))
	assert.Equal(t, domain.PhaseBreak, brk.Phase)
	assert.True(t, brk.StartTime.Equal(h.t0.Add(defaultFocusSeconds*time.Second)))
}

func TestPomodoroTimer_BreakEndsSession(t *testing.T) {
	h := newTimerHarness(t, WithTimerDurations(60, 30))
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Tick(ctx, 60)
	require.NoError(t, err)
	state, err := h.timer.Tick(ctx, 30)
	require.NoError(t, err)
	assert.True(t, state.Idle)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.True(t, l.Closed())
	}
}

func TestPomodoroTimer_TickClampsAtBoundary(t *testing.T) {
	h := newTimerHarness(t, WithTimerDurations(60, 30))
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)

	// Overshooting the focus phase does not eat into the break.
	state, err := h.timer.Tick(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseBreak, state.Phase)
	assert.Equal(t, 30, state.RemainingSeconds)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.NotNil(t, logs[0].EndTime)
	assert.True(t, logs[0].EndTime.Equal(h.t0.Add(60*time.Second)))
}

func TestPomodoroTimer_TickWhileIdleIsNoop(t *testing.T) {
	h := newTimerHarness(t)

	state, err := h.timer.Tick(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, state.Idle)
}

func TestPomodoroTimer_PauseResume(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Tick(ctx, 300)
	require.NoError(t, err)

	reason := "phone call"
	state, err := h.timer.Pause(ctx, &reason)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePaused, state.Phase)
	assert.Equal(t, defaultFocusSeconds-300, state.RemainingSeconds)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].InterruptionReason)
	assert.Equal(t, "phone call", *logs[0].InterruptionReason)
	assert.True(t, logs[0].EndTime.Equal(h.t0.Add(300*time.Second)))

	// Ticks while paused change nothing.
	state, err = h.timer.Tick(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePaused, state.Phase)
	assert.Equal(t, defaultFocusSeconds-300, state.RemainingSeconds)

	state, err = h.timer.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFocus, state.Phase)

	logs, err = h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[1].EndTime)
}

func TestPomodoroTimer_PauseDefaultsReason(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	_, err := h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Pause(ctx, nil)
	require.NoError(t, err)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.NotNil(t, logs[0].InterruptionReason)
	assert.Equal(t, "paused", *logs[0].InterruptionReason)
}

func TestPomodoroTimer_InvalidTransitions(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	_, err := h.timer.Resume(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = h.timer.Pause(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Pause(ctx, nil)
	require.NoError(t, err)
	_, err = h.timer.Pause(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPomodoroTimer_CompleteFromAnyState(t *testing.T) {
	h := newTimerHarness(t)
	ctx := context.Background()

	// Complete while idle is a no-op.
	state, err := h.timer.Complete(ctx)
	require.NoError(t, err)
	assert.True(t, state.Idle)

	_, err = h.timer.Start(ctx, h.block.ID, nil)
	require.NoError(t, err)
	_, err = h.timer.Tick(ctx, 120)
	require.NoError(t, err)
	state, err = h.timer.Complete(ctx)
	require.NoError(t, err)
	assert.True(t, state.Idle)

	logs, err := h.logs.ListByBlock(ctx, h.block.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Closed())
	assert.True(t, logs[0].EndTime.Equal(h.t0.Add(120*time.Second)))
}

// TestPomodoroTimer_Property_LogConservation drives random event sequences
// and checks that whenever the timer is idle, every persisted log is closed
// with end >= start.
func TestPomodoroTimer_Property_LogConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(53))
	ctx := context.Background()

	for trial := 0; trial < 40; trial++ {
		h := newTimerHarness(t, WithTimerDurations(90, 30))

		steps := 5 + rng.Intn(25)
		for i := 0; i < steps; i++ {
			switch rng.Intn(5) {
			case 0:
				h.timer.Start(ctx, h.block.ID, nil)
			case 1:
				_, err := h.timer.Tick(ctx, 1+rng.Intn(200))
				require.NoError(t, err)
			case 2:
				h.timer.Pause(ctx, nil)
			case 3:
				h.timer.Resume(ctx)
			case 4:
				_, err := h.timer.Complete(ctx)
				require.NoError(t, err)
			}
		}
		_, err := h.timer.Complete(ctx)
		require.NoError(t, err)
		require.True(t, h.timer.State().Idle)

		logs, err := h.logs.ListByBlock(ctx, h.block.ID)
		require.NoError(t, err)
		for _, l := range logs {
			require.True(t, l.Closed(), "trial %d: log %s left open after idle", trial, l.ID)
			assert.False(t, l.EndTime.Before(l.StartTime), "trial %d: log %s closed before it started", trial, l.ID)
		}
	}
}
