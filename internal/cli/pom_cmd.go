package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
)

func newPomCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pom",
		Short: "Run pomodoro sessions against a block",
	}

	cmd.AddCommand(
		newPomStartCmd(app),
		newPomStatusCmd(app),
	)

	return cmd
}

func newPomStartCmd(app *App) *cobra.Command {
	var date, taskArg string

	cmd := &cobra.Command{
		Use:   "start <block-id>",
		Short: "Start a focus session and watch the countdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("pom start needs an interactive terminal")
			}

			ctx := context.Background()
			todayDate, _, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			blockID, err := resolveBlockID(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			var taskID *string
			if taskArg != "" {
				resolved, err := resolveTaskID(ctx, app, taskArg)
				if err != nil {
					return err
				}
				taskID = &resolved
			}

			state, err := app.Timer.Start(ctx, blockID, taskID)
			if err != nil {
				return err
			}

			model := newPomWatchModel(app.Timer, state)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(pomWatchModel); ok && m.err != nil {
				return m.err
			}
			fmt.Println(formatter.StyleGreen.Render("Session recorded."))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for block prefix resolution, defaults to today")
	cmd.Flags().StringVar(&taskArg, "task", "", "Task to work on during the session")
	return cmd
}

func newPomStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the timer state",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := app.Timer.State()
			if state.Idle {
				fmt.Println(formatter.Dim("Timer idle."))
				return nil
			}
			fmt.Printf("%s  %02d:%02d remaining on block %s\n",
				state.Phase, state.RemainingSeconds/60, state.RemainingSeconds%60,
				formatter.ShortID(state.BlockID))
			return nil
		},
	}
	return cmd
}
