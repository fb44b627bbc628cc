package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/generator"
)

func newBlockAddCmd(app *App) *cobra.Command {
	var date, start, blockType, templateID string
	var duration, pomodoros int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a manual block",
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
			if date == "" {
				date = todayIn(loc)
			}
			if duration == 0 {
				duration = pol.BlockDurationMinutes
			}

			// A template pre-fills duration and type; explicit flags still win.
			if templateID != "" {
				tpl, err := app.Templates.GetByID(ctx, templateID)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("duration") {
					duration = tpl.DurationMinutes
				}
				if !cmd.Flags().Changed("type") {
					blockType = string(tpl.Type)
				}
			}
			if !domain.ValidBlockTypes[blockType] {
				return fmt.Errorf("invalid block type %q", blockType)
			}
			if pomodoros == 0 {
				pomodoros = generator.PlannedPomodoros(duration, pol.BreakDurationMinutes)
			}

			startAt, err := parseClockOn(date, start, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endAt := startAt.Add(minutes(duration))

			b, err := app.Blocks.CreateManualBlock(ctx, date, startAt, endAt, domain.BlockType(blockType), pomodoros)
			if err != nil {
				return err
			}
			fmt.Printf("Created block %s at %s\n",
				formatter.ShortID(b.ID), formatter.ClockRange(b.StartAt, b.EndAt, loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes, defaults to the policy block length")
	cmd.Flags().StringVar(&blockType, "type", "deep", "Block type (deep|shallow|admin|learning)")
	cmd.Flags().IntVar(&pomodoros, "pomodoros", 0, "Planned pomodoros, derived from duration when omitted")
	cmd.Flags().StringVar(&templateID, "template", "", "Template ID to pre-fill duration and type")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
