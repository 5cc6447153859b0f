package commands

import (
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"taskflow/pkg/database"
	"taskflow/pkg/tasks"
)

// HandlePurgeCommand empties the local cache, or the part of it matching
// filter. The server is not touched; the next refresh refills the cache.
func HandlePurgeCommand(db *sqlx.DB, filter database.TaskFilter, today tasks.Date, skipConfirm bool, in io.Reader, out io.Writer) (int64, error) {
	// Show confirmation unless --yes flag is used
	if !skipConfirm {
		fmt.Fprintf(out, "Are you sure you want to drop %s tasks from the local cache? (y/N): ", filter)
		if !confirmed(in) {
			fmt.Fprintln(out, "Operation cancelled.")
			return 0, nil
		}
	}

	n, err := database.PurgeTasks(db, filter, today)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return n, nil
}
