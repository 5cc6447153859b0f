package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskflow/pkg/api"
	"taskflow/pkg/commands"
	"taskflow/pkg/database"
	"taskflow/pkg/session"
	"taskflow/pkg/tasks"
)

// refresh syncs the cache before a command acts on it
func (a *app) refresh(cmd *cobra.Command) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	if _, err := commands.Refresh(ctx, a.client, a.db); err != nil {
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, session.ErrNotLoggedIn) {
			return fmt.Errorf("%w: run `taskflow login` first", err)
		}
		return err
	}
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		dueToday bool
		asJSON   bool
		search   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, session.ErrNotLoggedIn) {
						return err
					}
					// Fall back to the cache
					zap.L().Warn("refresh failed", zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "Offline (%v), showing cached tasks\n", err)
				}

				filter := database.AllTasksFilter
				if dueToday {
					filter = database.DueTodayFilter
				}
				list, err := database.LoadTasks(a.db, filter, a.today(), search)
				if err != nil {
					return err
				}
				return commands.HandleListCommand(cmd.OutOrStdout(), a.loc, list, a.today(), asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&dueToday, "today", false, "Only tasks due today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by title or description")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var addOpts commands.AddOptions

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx, cancel := a.context(cmd)
				defer cancel()

				task, err := commands.HandleAddTask(ctx, a.client, a.db, args[0], addOpts, a.today())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %s: %s (%s)\n", task.ID, task.Title, a.loc.Frequency(task))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&addOpts.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&addOpts.Frequency, "frequency", "f", "", "one-off (default), daily, weekly or custom")
	cmd.Flags().IntVar(&addOpts.Every, "every", 0, "Repeat every N days (implies custom)")
	cmd.Flags().StringVar(&addOpts.Start, "start", "", "Start date YYYY-MM-DD (default today)")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or description of an open task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var titlePtr, descPtr *string
			if cmd.Flags().Changed("title") {
				titlePtr = &title
			}
			if cmd.Flags().Changed("description") {
				descPtr = &description
			}
			if titlePtr == nil && descPtr == nil {
				return errors.New("nothing to change, pass --title and/or --description")
			}

			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					return err
				}
				ctx, cancel := a.context(cmd)
				defer cancel()

				task, err := commands.HandleEditCommand(ctx, a.client, a.db, tasks.ID(args[0]), titlePtr, descPtr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	return cmd
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a task due today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					return err
				}
				ctx, cancel := a.context(cmd)
				defer cancel()

				task, err := commands.HandleCompleteCommand(ctx, a.client, a.db, tasks.ID(args[0]), a.today())
				if err != nil {
					return err
				}
				printOutcome(cmd, a, task)
				return nil
			})
		},
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a one-off task completed or open again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					return err
				}
				ctx, cancel := a.context(cmd)
				defer cancel()

				task, err := commands.HandleToggleCommand(ctx, a.client, a.db, tasks.ID(args[0]), a.today())
				if err != nil {
					return err
				}
				printOutcome(cmd, a, task)
				return nil
			})
		},
	}
}

func printOutcome(cmd *cobra.Command, a *app, task tasks.Task) {
	msg := a.loc.DisplayMessage(tasks.DueMessage(task, a.today()))
	if msg == "" {
		msg = "open"
		if task.Completed {
			msg = "completed"
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", task.Title, msg)
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					return err
				}
				ctx, cancel := a.context(cmd)
				defer cancel()

				deleted, err := commands.HandleDeleteCommand(ctx, a.client, a.db, tasks.ID(args[0]), yes, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
