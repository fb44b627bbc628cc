package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/blocksched/internal/cli/formatter"
	"github.com/alexanderramin/blocksched/internal/domain"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage block presets",
	}

	cmd.AddCommand(
		newTemplateAddCmd(app),
		newTemplateListCmd(app),
		newTemplateRemoveCmd(app),
	)

	return cmd
}

func newTemplateAddCmd(app *App) *cobra.Command {
	var name, blockType string
	var duration int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a block preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl := &domain.Template{
				ID:              uuid.New().String(),
				Name:            name,
				DurationMinutes: duration,
				Type:            domain.BlockType(blockType),
				CreatedAt:       time.Now().UTC(),
			}
			if err := tpl.Validate(); err != nil {
				return err
			}
			if err := app.Templates.Create(context.Background(), tpl); err != nil {
				return err
			}
			fmt.Printf("Created template %s: %s (%dm %s)\n",
				formatter.ShortID(tpl.ID), tpl.Name, tpl.DurationMinutes, tpl.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Template name")
	cmd.Flags().IntVar(&duration, "duration", 50, "Duration in minutes")
	cmd.Flags().StringVar(&blockType, "type", "deep", "Block type (deep|shallow|admin|learning)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List block presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Templates.List(context.Background())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println(formatter.Dim("No templates."))
				return nil
			}
			headers := []string{"ID", "Name", "Duration", "Type"}
			rows := make([][]string, 0, len(templates))
			for _, tpl := range templates {
				rows = append(rows, []string{
					formatter.Dim(formatter.ShortID(tpl.ID)),
					tpl.Name,
					fmt.Sprintf("%dm", tpl.DurationMinutes),
					string(tpl.Type),
				})
			}
			fmt.Println(formatter.Header("Templates"))
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}
	return cmd
}

func newTemplateRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <template-id>",
		Short: "Delete a block preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := app.Templates.Delete(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !existed {
				fmt.Println(formatter.Dim("Template already gone."))
				return nil
			}
			fmt.Printf("Deleted template %s\n", formatter.ShortID(args[0]))
			return nil
		},
	}
	return cmd
}
