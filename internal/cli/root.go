// Package cli wires the cobra command tree over the service layer. Commands
// print through the formatter package; interactive surfaces (policy edit,
// pomodoro watch) run huh forms and bubbletea models.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/repository"
	"github.com/alexanderramin/blocksched/internal/service"
)

// App holds the services and repositories the CLI commands run against.
type App struct {
	Blocks     service.BlockService
	Planning   service.PlanningService
	Tasks      service.TaskService
	Timer      service.PomodoroTimer
	Reflection service.ReflectionService

	Routines     repository.RoutineRepo
	Templates    repository.TemplateRepo
	Policies     repository.PolicyRepo
	Suppressions repository.SuppressionRepo
	Audit        repository.AuditRepo

	// IsInteractive reports whether stdin is a terminal; interactive
	// commands refuse to run without one.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "blocksched" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "blocksched",
		Short: "Calendar-backed time blocking and pomodoro tracking",
	}

	root.AddCommand(
		newBlockCmd(app),
		newSyncCmd(app),
		newTaskCmd(app),
		newPomCmd(app),
		newRoutineCmd(app),
		newTemplateCmd(app),
		newReflectCmd(app),
		newPolicyCmd(app),
		newSuppressionCmd(app),
		newAuditCmd(app),
	)

	return root
}
