package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskflow/pkg/commands"
	"taskflow/pkg/database"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var exportType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the cached tasks to a file",
		Long:  "Export writes the cached tasks as json, yaml or txt. The cache is refreshed first when the API is reachable.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.refresh(cmd); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Offline (%v), exporting cached tasks\n", err)
				}

				list, err := database.LoadTasks(a.db, database.AllTasksFilter, a.today(), "")
				if err != nil {
					return err
				}
				if err := commands.HandleExportCommand(list, args[0], exportType); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d task(s) to %s\n", len(list), args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&exportType, "type", commands.ExportJSON, "Export file type (json, yaml, txt)")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a txt export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error reading file: %w", err)
			}
			defer f.Close()

			return withApp(opts, func(a *app) error {
				ctx, cancel := a.context(cmd)
				defer cancel()

				result, err := commands.HandleImportCommand(ctx, a.client, a.db, f, cmd.ErrOrStderr(), a.today())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d task(s) from %s (%d completed skipped, %d failed)\n",
					result.Added, args[0], result.Skipped, result.Failed)
				return nil
			})
		},
	}
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Local task cache utilities",
	}

	var (
		yes  bool
		done bool
		open bool
	)
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop tasks from the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := database.AllTasksFilter
			switch {
			case done && open:
				return fmt.Errorf("--done and --open are mutually exclusive")
			case done:
				filter = database.DoneTasksFilter
			case open:
				filter = database.OpenTasksFilter
			}

			return withApp(opts, func(a *app) error {
				n, err := commands.HandlePurgeCommand(a.db, filter, a.today(), yes, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully dropped %d cached task(s)\n", n)
				return nil
			})
		},
	}
	purgeCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	purgeCmd.Flags().BoolVar(&done, "done", false, "Only completed tasks")
	purgeCmd.Flags().BoolVar(&open, "open", false, "Only open tasks")

	cacheCmd.AddCommand(purgeCmd)
	return cacheCmd
}
