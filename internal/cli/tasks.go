package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Burbitskaya/task-manager-app/internal/export"
	"github.com/Burbitskaya/task-manager-app/internal/task"
	"github.com/Burbitskaya/task-manager-app/internal/ui"
)

func newAddCmd(a *app) *cobra.Command {
	var d task.Draft
	var at string

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"new", "create"},
		Short:   "Add a task",
		Example: `  tasks add -t "Buy milk" -d "2L" -l "Corner shop" --at "2030-01-02 18:00"`,
		Args:    cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(cmd *cobra.Command, _ []string) error {
		when, dateErr := task.ParseExecutionDate(at, a.loc)
		d.ExecutionDate = when
		valid, err := a.validator().Validate(d)
		if err != nil {
			var verr *task.ValidationError
			if errors.As(err, &verr) && verr.Rule == task.RuleExecutionDatePast && dateErr != nil {
				return fmt.Errorf("execution date: %w", dateErr)
			}
			return err
		}
		created, err := a.store.Create(cmd.Context(), valid)
		if err != nil {
			return describe("add", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	})

	cmd.Flags().StringVarP(&d.Title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&d.Description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&d.Location, "location", "l", "", "where the task happens")
	cmd.Flags().StringVar(&at, "at", "", "execution date ("+task.DateInputLayout+" or YYYY-MM-DD)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var field, dir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(cmd *cobra.Command, _ []string) error {
		sortCfg := a.cfg.SortConfig()
		if field != "" {
			f, err := task.ParseSortField(field)
			if err != nil {
				return err
			}
			sortCfg.Field = f
		}
		if dir != "" {
			d, err := task.ParseDirection(dir)
			if err != nil {
				return err
			}
			sortCfg.Direction = d
		}

		tasks, err := a.store.LoadAll(cmd.Context())
		if err != nil {
			return describe("list", err)
		}
		tasks = task.Sort(tasks, sortCfg)

		out := cmd.OutOrStdout()
		if asJSON {
			return export.Write(out, tasks, export.JSON)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks.")
			return nil
		}
		fmt.Fprintln(out, ui.RenderTable(tasks, a.now(), a.loc))
		return nil
	})

	cmd.Flags().StringVarP(&field, "sort", "s", "", "sort by date or status")
	cmd.Flags().StringVar(&dir, "dir", "", "sort direction, asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <status> <id>...",
		Short: "Set the status of one or more tasks",
		Long:  "Set the status of one or more tasks. Status is one of pending, in-progress, completed, cancelled.",
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.RunE = a.withStore(func(cmd *cobra.Command, args []string) error {
		status, err := task.ParseStatus(args[0])
		if err != nil {
			return err
		}
		ids := args[1:]
		out := cmd.OutOrStdout()

		if len(ids) == 1 {
			updated, err := a.store.UpdateStatus(cmd.Context(), ids[0], status)
			if err != nil {
				return describe("update", err)
			}
			fmt.Fprintf(out, "%s is now %s\n", updated.ID, updated.Status.Label())
			return nil
		}
		n, err := a.store.BulkUpdateStatus(cmd.Context(), ids, status)
		if err != nil {
			return describe("update", err)
		}
		fmt.Fprintf(out, "Updated %d of %d tasks to %s\n", n, len(ids), status.Label())
		return nil
	})
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete one or more tasks",
		Args:    cobra.MinimumNArgs(1),
	}
	cmd.RunE = a.withStore(func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			if err := a.store.DeleteOne(cmd.Context(), args[0]); err != nil {
				return describe("delete", err)
			}
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			return nil
		}
		n, err := a.store.DeleteMany(cmd.Context(), args)
		if err != nil {
			return describe("delete", err)
		}
		fmt.Fprintf(out, "Deleted %d tasks\n", n)
		return nil
	})
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to stdout as json, yaml or toml",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(cmd *cobra.Command, _ []string) error {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		tasks, err := a.store.LoadAll(cmd.Context())
		if err != nil {
			return describe("export", err)
		}
		return export.Write(cmd.OutOrStdout(), task.Sort(tasks, a.cfg.SortConfig()), f)
	})
	cmd.Flags().StringVarP(&format, "format", "f", string(export.JSON), "json, yaml or toml")
	return cmd
}
