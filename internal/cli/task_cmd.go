package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
)

// resolveTaskID accepts a full task ID or a unique prefix, matched
// case-insensitively against the task list.
func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}
	tasks, err := app.Tasks.ListTasks(ctx)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range tasks {
		if t.ID == input {
			return t.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(t.ID), strings.ToLower(input)) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the task pool",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskAssignCmd(app),
		newTaskSplitCmd(app),
		newTaskCarryCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, description string
	var estimate int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc *string
			if description != "" {
				desc = &description
			}
			var est *int
			if estimate > 0 {
				est = &estimate
			}
			task, err := app.Tasks.CreateTask(context.Background(), title, desc, est)
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s: %s\n", formatter.ShortID(task.ID), task.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "desc", "", "Task description")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "Estimated pomodoros")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.ListTasks(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(formatter.Header("Tasks"))
			fmt.Print(formatter.FormatTaskTable(tasks))
			return nil
		},
	}
	return cmd
}

func newTaskAssignCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "assign <task-id> <block-id>",
		Short: "Assign a task to a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			todayDate, _, err := today(ctx, app)
			if err != nil {
				return err
			}
			if date == "" {
				date = todayDate
			}
			blockID, err := resolveBlockID(ctx, app, date, args[1])
			if err != nil {
				return err
			}

			if err := app.Tasks.AssignTaskToBlock(ctx, taskID, blockID); err != nil {
				return err
			}
			fmt.Printf("Assigned task %s to block %s\n",
				formatter.ShortID(taskID), formatter.ShortID(blockID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used for block prefix resolution, defaults to today")
	return cmd
}

func newTaskSplitCmd(app *App) *cobra.Command {
	var parts int

	cmd := &cobra.Command{
		Use:   "split <task-id>",
		Short: "Split a task into smaller parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			children, err := app.Tasks.SplitTask(ctx, taskID, parts)
			if err != nil {
				return err
			}
			fmt.Printf("Split into %d task(s):\n", len(children))
			for _, c := range children {
				fmt.Printf("  %s  %s\n", formatter.Dim(formatter.ShortID(c.ID)), c.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parts, "parts", 2, "Number of parts")
	return cmd
}

func newTaskCarryCmd(app *App) *cobra.Command {
	var fromBlock, date string

	cmd := &cobra.Command{
		Use:   "carry <task-id>",
		Short: "Carry an unfinished task over to a free block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if date == "" {
				todayDate, _, err := today(ctx, app)
				if err != nil {
					return err
				}
				date = todayDate
			}

			chosen, err := app.Tasks.CarryOverTask(ctx, taskID, fromBlock, date)
			if err != nil {
				return err
			}
			fmt.Printf("Carried task %s over to block %s on %s\n",
				formatter.ShortID(taskID), formatter.ShortID(chosen), date)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromBlock, "from", "", "Block the task is leaving")
	cmd.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD), defaults to today")
	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			taskID, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			existed, err := app.Tasks.DeleteTask(ctx, taskID)
			if err != nil {
				return err
			}
			if !existed {
				fmt.Println(formatter.Dim("Task already gone."))
				return nil
			}
			fmt.Printf("Deleted task %s\n", formatter.ShortID(taskID))
			return nil
		},
	}
	return cmd
}
