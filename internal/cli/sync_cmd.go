package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
)

func newSyncCmd(app *App) *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull external calendar changes into the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			added, updated, deleted, err := app.Planning.Sync(context.Background(), windowDays)
			if err != nil {
				return err
			}
			if added+updated+deleted == 0 {
				fmt.Println(formatter.Dim("Already up to date."))
				return nil
			}
			fmt.Printf("Synced: %s added, %s updated, %s deleted\n",
				formatter.StyleGreen.Render(fmt.Sprintf("%d", added)),
				formatter.StyleYellow.Render(fmt.Sprintf("%d", updated)),
				formatter.StyleRed.Render(fmt.Sprintf("%d", deleted)))
			return nil
		},
	}

	cmd.Flags().IntVar(&windowDays, "window", 7, "Days before and after today to reconcile")
	return cmd
}
