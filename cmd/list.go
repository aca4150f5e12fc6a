package cmd

import (
	"errors"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

func templatesCmd() *cobra.Command {
	tpl := &cobra.Command{Use: "templates", Short: "Inspect the template registry"}
	tpl.AddCommand(templateListCmd())
	return tpl
}

func templateListCmd() *cobra.Command {
	var (
		f     repository.TemplateFilter
		model string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			f.ExecutionModel = constants.ExecutionModel(model)
			templates, err := a.pipeline.Templates.ListActiveTemplates(cmd.Context(), f)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Key", "Name", "Model", "Scope", "Category"})
			for _, t := range templates {
				scope := string(t.Scope)
				if t.ScopeDomainID != "" {
					scope += ":" + t.ScopeDomainID
				}
				tw.AppendRow(table.Row{t.ID, t.Key, t.Name, t.ExecutionModel, scope, t.Category})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&model, "model", "", "execution model filter")
	cmd.Flags().StringVar(&f.DomainID, "domain", "", "only templates visible to this domain")
	return cmd
}

func tasksCmd() *cobra.Command {
	tasks := &cobra.Command{Use: "tasks", Short: "Inspect user task assignments"}
	tasks.AddCommand(taskListCmd())
	return tasks
}

func taskListCmd() *cobra.Command {
	var (
		userID string
		f      repository.UserTaskFilter
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks assigned to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.pipeline.Assignments.GetUserTasks(cmd.Context(), userID, f)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Domain", "Model", "Viewed", "Completed", "Assigned"})
			for _, t := range tasks {
				tw.AppendRow(table.Row{
					t.ID,
					t.Snapshot.Title,
					t.DomainID,
					t.Snapshot.ExecutionModel,
					t.IsViewed,
					t.IsCompleted,
					t.AssignedAt.Format("2006-01-02 15:04"),
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&f.DomainID, "domain", "", "domain filter")
	cmd.Flags().BoolVar(&f.IncludeCompleted, "completed", false, "include completed tasks")
	cmd.Flags().BoolVar(&f.IncludeHidden, "hidden", false, "include hidden tasks")
	return cmd
}

func init() {
	rootCmd.AddCommand(templatesCmd(), tasksCmd())
}
