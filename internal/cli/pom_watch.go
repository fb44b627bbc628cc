package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/service"
)

type watchTickMsg time.Time

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

type watchKeymap struct {
	Pause  key.Binding
	Resume key.Binding
	Done   key.Binding
	Quit   key.Binding
}

func newWatchKeymap() watchKeymap {
	return watchKeymap{
		Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Done:   key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter", "complete")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// pomWatchModel drives the running timer: one Tick per wall-clock second,
// keys for pause/resume/complete.
type pomWatchModel struct {
	timer      service.PomodoroTimer
	state      service.TimerState
	bar        progress.Model
	keys       watchKeymap
	phaseTotal int
	lastPhase  domain.PomodoroPhase
	err        error
}

func newPomWatchModel(timer service.PomodoroTimer, state service.TimerState) pomWatchModel {
	return pomWatchModel{
		timer:      timer,
		state:      state,
		bar:        progress.New(progress.WithDefaultGradient()),
		keys:       newWatchKeymap(),
		phaseTotal: state.RemainingSeconds,
		lastPhase:  state.Phase,
	}
}

func (m pomWatchModel) Init() tea.Cmd {
	return watchTick()
}

func (m pomWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case watchTickMsg:
		state, err := m.timer.Tick(ctx, 1)
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.state = state
		if state.Idle {
			return m, tea.Quit
		}
		if state.Phase != m.lastPhase {
			m.lastPhase = state.Phase
			m.phaseTotal = state.RemainingSeconds
		}
		return m, watchTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Pause):
			if state, err := m.timer.Pause(ctx, nil); err == nil {
				m.state = state
			}
			return m, nil
		case key.Matches(msg, m.keys.Resume):
			if state, err := m.timer.Resume(ctx); err == nil {
				m.state = state
				m.lastPhase = state.Phase
			}
			return m, nil
		case key.Matches(msg, m.keys.Done), key.Matches(msg, m.keys.Quit):
			state, err := m.timer.Complete(ctx)
			if err != nil {
				m.err = err
			}
			m.state = state
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pomWatchModel) View() string {
	if m.state.Idle {
		return formatter.StyleGreen.Render("Session complete.") + "\n"
	}

	var label string
	switch m.state.Phase {
	case domain.PhaseFocus:
		label = formatter.StyleRed.Render("FOCUS")
	case domain.PhaseBreak:
		label = formatter.StyleGreen.Render("BREAK")
	case domain.PhasePaused:
		label = formatter.StyleYellow.Render("PAUSED")
	default:
		label = string(m.state.Phase)
	}

	percent := 0.0
	if m.phaseTotal > 0 {
		percent = 1 - float64(m.state.RemainingSeconds)/float64(m.phaseTotal)
	}
	remaining := fmt.Sprintf("%02d:%02d", m.state.RemainingSeconds/60, m.state.RemainingSeconds%60)

	return fmt.Sprintf("\n  %s  %s\n\n  %s\n\n  %s\n",
		label,
		formatter.Bold(remaining),
		m.bar.ViewAs(percent),
		formatter.Dim("p pause · r resume · enter complete · q quit"))
}
