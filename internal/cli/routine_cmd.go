package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
)

// weekdaysFlag parses a comma-separated weekday list ("mon,wed,fri") as a
// pflag value.
type weekdaysFlag struct {
	days *[]time.Weekday
}

var _ pflag.Value = (*weekdaysFlag)(nil)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func (f *weekdaysFlag) String() string {
	if f.days == nil {
		return ""
	}
	return strings.ToLower(formatter.FormatWeekdays(*f.days))
}

func (f *weekdaysFlag) Set(value string) error {
	var days []time.Weekday
	for _, part := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if len(name) > 3 {
			name = name[:3]
		}
		day, ok := weekdayNames[name]
		if !ok {
			return fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	*f.days = days
	return nil
}

func (f *weekdaysFlag) Type() string { return "weekdays" }

func newRoutineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Manage recurring blocks",
	}

	cmd.AddCommand(
		newRoutineAddCmd(app),
		newRoutineListCmd(app),
		newRoutineRemoveCmd(app),
	)

	return cmd
}

func newRoutineAddCmd(app *App) *cobra.Command {
	var name, start, blockType, firmness string
	var duration, pomodoros int
	var carryover bool
	var skipDates []string
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a routine",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := &domain.Routine{
				ID:              uuid.New().String(),
				Name:            name,
				Days:            days,
				Start:           start,
				DurationMinutes: duration,
				Type:            domain.BlockType(blockType),
				Pomodoros:       pomodoros,
				Firmness:        domain.Firmness(firmness),
				SkipDates:       skipDates,
				Carryover:       carryover,
				CreatedAt:       time.Now().UTC(),
			}
			if err := rt.Validate(); err != nil {
				return err
			}
			if err := app.Routines.Create(context.Background(), rt); err != nil {
				return err
			}
			fmt.Printf("Created routine %s: %s at %s\n",
				formatter.ShortID(rt.ID), rt.Name, rt.Start)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Routine name")
	cmd.Flags().Var(&weekdaysFlag{days: &days}, "days", "Weekdays (e.g. mon,wed,fri), defaults to weekdays")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 50, "Duration in minutes")
	cmd.Flags().StringVar(&blockType, "type", "deep", "Block type (deep|shallow|admin|learning)")
	cmd.Flags().IntVar(&pomodoros, "pomodoros", 1, "Planned pomodoros per block")
	cmd.Flags().StringVar(&firmness, "firmness", "draft", "Firmness of generated blocks (draft|soft|hard)")
	cmd.Flags().StringSliceVar(&skipDates, "skip", nil, "Dates to skip (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&carryover, "carryover", false, "Carry unfinished tasks forward from this routine's blocks")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newRoutineListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			routines, err := app.Routines.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(formatter.Header("Routines"))
			fmt.Print(formatter.FormatRoutineTable(routines))
			return nil
		},
	}
	return cmd
}

func newRoutineRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <routine-id>",
		Short: "Delete a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := app.Routines.Delete(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !existed {
				fmt.Println(formatter.Dim("Routine already gone."))
				return nil
			}
			fmt.Printf("Deleted routine %s\n", formatter.ShortID(args[0]))
			return nil
		},
	}
	return cmd
}
