package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
)

func blockschedHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateClock(s string) error {
	_, _, err := domain.ParseHHMM(s)
	return err
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func validateTimezone(s string) error {
	_, err := time.LoadLocation(s)
	return err
}

func newPolicyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show and edit the scheduling policy",
	}

	cmd.AddCommand(newPolicyShowCmd(app), newPolicyEditCmd(app))
	return cmd
}

func newPolicyShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			pol, err := app.Policies.Get(context.Background())
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatPolicy(pol))
			return nil
		},
	}
	return cmd
}

func newPolicyEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the policy interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("policy edit needs an interactive terminal")
			}

			ctx := context.Background()
			pol, err := app.Policies.Get(ctx)
			if err != nil {
				return err
			}

			start := pol.WorkHours.Start
			end := pol.WorkHours.End
			days := pol.WorkHours.Days
			timezone := pol.Timezone
			blockLen := strconv.Itoa(pol.BlockDurationMinutes)
			breakLen := strconv.Itoa(pol.BreakDurationMinutes)
			gap := strconv.Itoa(pol.MinBlockGapMinutes)

			dayOptions := make([]huh.Option[time.Weekday], 7)
			for i, d := range []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
				time.Friday, time.Saturday, time.Sunday,
			} {
				dayOptions[i] = huh.NewOption(d.String(), d)
			}

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Work start (HH:MM)").Value(&start).Validate(validateClock),
					huh.NewInput().Title("Work end (HH:MM)").Value(&end).Validate(validateClock),
					huh.NewMultiSelect[time.Weekday]().Title("Work days").Options(dayOptions...).Value(&days),
					huh.NewInput().Title("Time zone (IANA)").Value(&timezone).Validate(validateTimezone),
				),
				huh.NewGroup(
					huh.NewInput().Title("Block length (minutes)").Value(&blockLen).Validate(validatePositiveInt),
					huh.NewInput().Title("Break length (minutes)").Value(&breakLen).Validate(validatePositiveInt),
					huh.NewInput().Title("Minimum gap between blocks (minutes)").Value(&gap),
				),
			).WithTheme(blockschedHuhTheme()).WithShowHelp(false)

			if err := form.Run(); err != nil {
				return err
			}

			pol.WorkHours.Start = start
			pol.WorkHours.End = end
			pol.WorkHours.Days = days
			pol.Timezone = timezone
			pol.BlockDurationMinutes, _ = strconv.Atoi(blockLen)
			pol.BreakDurationMinutes, _ = strconv.Atoi(breakLen)
			if gap != "" {
				pol.MinBlockGapMinutes, _ = strconv.Atoi(gap)
			}
			if err := pol.Validate(); err != nil {
				return err
			}
			if err := app.Policies.Upsert(ctx, pol); err != nil {
				return err
			}
			fmt.Println("Policy saved.")
			return nil
		},
	}
	return cmd
}
