package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
)

func newReflectCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "reflect",
		Short: "Summarize pomodoro activity over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pol, err := app.Policies.Get(ctx)
			if err != nil {
				return err
			}
			loc, err := pol.Location()
			if err != nil {
				return err
			}

			// Default: today only.
			if from == "" {
				from = todayIn(loc)
			}
			start, err := time.ParseInLocation(domain.DateLayout, from, loc)
			if err != nil {
				return fmt.Errorf("invalid --from date %q: %w", from, err)
			}
			var end time.Time
			if to == "" {
				end = start.AddDate(0, 0, 1)
			} else {
				end, err = time.ParseInLocation(domain.DateLayout, to, loc)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", to, err)
				}
				// Inclusive end date.
				end = end.AddDate(0, 0, 1)
			}

			summary, err := app.Reflection.Aggregate(ctx, start, end)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatReflection(start, end.AddDate(0, 0, -1),
				summary.CompletedCount, summary.InterruptedCount, summary.TotalFocusSeconds,
				summary.Logs, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&to, "to", "", "Last date (YYYY-MM-DD), inclusive, defaults to --from")
	return cmd
}

func newAuditCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent task events",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Audit.ListRecent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(formatter.Dim("No audit entries."))
				return nil
			}
			headers := []string{"When", "Event", "Payload"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					formatter.Dim(e.CreatedAt.Local().Format("Jan 02 15:04")),
					e.EventType,
					e.Payload,
				})
			}
			fmt.Println(formatter.Header("Audit log"))
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")
	return cmd
}

func newSuppressionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suppression",
		Short: "Inspect and clear suppressed block instances",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List suppressed instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Suppressions.List(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(formatter.Dim("No suppressions."))
				return nil
			}
			headers := []string{"Instance", "Reason", "When"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				reason := formatter.Dim("-")
				if e.Reason != nil {
					reason = *e.Reason
				}
				rows = append(rows, []string{
					e.Instance,
					reason,
					formatter.Dim(e.SuppressedAt.Local().Format("Jan 02 15:04")),
				})
			}
			fmt.Println(formatter.Header("Suppressions"))
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear <instance>",
		Short: "Allow an instance to be generated again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Suppressions.Clear(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared suppression for %s\n", args[0])
			return nil
		},
	}

	clearAll := &cobra.Command{
		Use:   "clear-all",
		Short: "Remove every suppression",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Suppressions.ClearAll(context.Background()); err != nil {
				return err
			}
			fmt.Println("Cleared all suppressions")
			return nil
		},
	}

	cmd.AddCommand(list, clear, clearAll)
	return cmd
}
