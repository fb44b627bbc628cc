package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
)

// today returns the current date in the policy's time zone.
func today(ctx context.Context, app *App) (string, *time.Location, error) {
	pol, err := app.Policies.Get(ctx)
	if err != nil {
		return "", nil, err
	}
	loc, err := pol.Location()
	if err != nil {
		return "", nil, err
	}
	return time.Now().In(loc).Format(domain.DateLayout), loc, nil
}

// resolveBlockID accepts a full block ID or a unique prefix among the blocks
// of the given date.
func resolveBlockID(ctx context.Context, app *App, date, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("block ID is required")
	}
	if b, err := app.Blocks.GetBlock(ctx, input); err == nil {
		return b.ID, nil
	}

	blocks, err := app.Blocks.ListBlocksForDate(ctx, date)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, b := range blocks {
		if strings.HasPrefix(b.ID, input) {
			matches = append(matches, b.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("block not found on %s: %q", date, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("block ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newBlockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Generate and manage schedule blocks",
	}

	cmd.AddCommand(
		newBlockGenerateCmd(app),
		newBlockListCmd(app),
		newBlockShowCmd(app),
		newBlockAddCmd(app),
		newBlockApproveCmd(app),
		newBlockAdjustCmd(app),
		newBlockRelocateCmd(app),
		newBlockDeleteCmd(app),
	)

	return cmd
}

func newBlockGenerateCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate draft blocks for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, loc, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}

			created, err := app.Planning.GenerateForDate(ctx, date)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Println(formatter.Dim("Nothing new to generate for " + date))
				return nil
			}
			fmt.Printf("Generated %d draft block(s) for %s\n\n", len(created), date)
			fmt.Print(formatter.FormatBlockTable(created, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	return cmd
}

func newBlockListCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocks for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, loc, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}

			blocks, err := app.Blocks.ListBlocksForDate(ctx, date)
			if err != nil {
				return err
			}
			fmt.Println(formatter.Header("Blocks " + date))
			fmt.Print(formatter.FormatBlockTable(blocks, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	return cmd
}

func newBlockShowCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show <block-id>",
		Short: "Show one block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, loc, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			id, err := resolveBlockID(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			b, err := app.Blocks.GetBlock(ctx, id)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatBlockDetail(b, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for prefix resolution, defaults to today")
	return cmd
}

func newBlockApproveCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "approve <block-id>...",
		Short: "Approve draft blocks (draft becomes soft)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, _, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}

			ids := make([]string, 0, len(args))
			for _, arg := range args {
				id, err := resolveBlockID(ctx, app, date, arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			approved, err := app.Blocks.ApproveBlocks(ctx, ids)
			if err != nil {
				return err
			}
			fmt.Printf("Approved %d block(s)\n", len(approved))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for prefix resolution, defaults to today")
	return cmd
}

func newBlockAdjustCmd(app *App) *cobra.Command {
	var date, start, end string

	cmd := &cobra.Command{
		Use:   "adjust <block-id>",
		Short: "Move a block to a new time on its date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, loc, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			id, err := resolveBlockID(ctx, app, date, args[0])
			if err != nil {
				return err
			}
			b, err := app.Blocks.GetBlock(ctx, id)
			if err != nil {
				return err
			}

			startAt, err := parseClockOn(b.Date, start, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endAt, err := parseClockOn(b.Date, end, loc)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			adjusted, err := app.Blocks.AdjustBlockTime(ctx, id, startAt, endAt)
			if err != nil {
				return err
			}
			fmt.Printf("Moved block %s to %s\n",
				formatter.ShortID(adjusted.ID),
				formatter.ClockRange(adjusted.StartAt, adjusted.EndAt, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for prefix resolution, defaults to today")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newBlockRelocateCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "relocate <block-id>",
		Short: "Move a block out of the way of calendar events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, loc, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			id, err := resolveBlockID(ctx, app, date, args[0])
			if err != nil {
				return err
			}

			moved, ok, err := app.Planning.RelocateIfNeeded(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(formatter.StyleYellow.Render("No free slot found; manual adjustment required."))
				return nil
			}
			fmt.Printf("Block %s now at %s\n",
				formatter.ShortID(moved.ID),
				formatter.ClockRange(moved.StartAt, moved.EndAt, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for prefix resolution, defaults to today")
	return cmd
}

func newBlockDeleteCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "delete <block-id>",
		Short: "Delete a block and suppress its regeneration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			todayDate, _, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			id, err := resolveBlockID(ctx, app, date, args[0])
			if err != nil {
				return err
			}

			existed, err := app.Blocks.DeleteBlock(ctx, id)
			if err != nil {
				return err
			}
			if !existed {
				fmt.Println(formatter.Dim("Block already gone."))
				return nil
			}
			fmt.Printf("Deleted block %s\n", formatter.ShortID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for prefix resolution, defaults to today")
	return cmd
}

func todayIn(loc *time.Location) string {
	return time.Now().In(loc).Format(domain.DateLayout)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// parseClockOn combines a date with an HH:MM wall-clock time in loc.
func parseClockOn(date, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := domain.ParseHHMM(clock)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}
