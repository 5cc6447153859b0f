package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskflow/pkg/api"
	"taskflow/pkg/database"
	"taskflow/pkg/tasks"
	"taskflow/pkg/translator"
)

var (
	// ErrUnknownTask is returned for an id missing from the fresh listing
	ErrUnknownTask = errors.New("no such task")
	// ErrNotCompletable is returned when a task is not due today
	ErrNotCompletable = errors.New("only tasks due today can be completed")
	// ErrNotOneOff is returned when toggling a recurring task
	ErrNotOneOff = errors.New("only one-off tasks can be toggled")
)

// TaskService is the API surface the commands drive
type TaskService interface {
	ListTasks(ctx context.Context) ([]tasks.Task, error)
	CreateTask(ctx context.Context, n tasks.NewTask, today tasks.Date) (tasks.Task, error)
	EditTask(ctx context.Context, id tasks.ID, edit tasks.Edit) (tasks.Task, error)
	SetCompleted(ctx context.Context, id tasks.ID, completed bool) (bool, error)
	CompleteTask(ctx context.Context, id tasks.ID) (tasks.CompletionResult, error)
	DeleteTask(ctx context.Context, id tasks.ID) error
}

// Refresh fetches the task list and replaces the cache with it
func Refresh(ctx context.Context, svc TaskService, db *sqlx.DB) ([]tasks.Task, error) {
	list, err := svc.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if err := database.ReplaceTasks(db, list); err != nil {
		return nil, fmt.Errorf("update cache: %w", err)
	}
	return list, nil
}

// cachedTask looks id up in the cache
func cachedTask(db *sqlx.DB, id tasks.ID) (tasks.Task, error) {
	task, err := database.GetTask(db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, fmt.Errorf("task %s: %w", id, ErrUnknownTask)
	}
	return task, err
}

// HandleListCommand prints list as a table, or as JSON when asJSON is set
func HandleListCommand(w io.Writer, loc *translator.Localizer, list []tasks.Task, today tasks.Date, asJSON bool) error {
	if asJSON {
		content, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tasks: %w", err)
		}
		_, err = fmt.Fprintln(w, string(content))
		return err
	}

	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, task := range list {
		status := "[ ]"
		switch {
		case task.Frequency.Recurring():
			status = "(↻)"
		case task.Completed:
			status = "[x]"
		}
		rows = append(rows, []string{
			string(task.ID),
			status,
			task.Title,
			loc.Frequency(task),
			loc.DisplayMessage(tasks.DueMessage(task, today)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "TITLE", "FREQUENCY", "STATUS").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// HandleEditCommand changes a task's title and description. Fields left
// empty keep their current value.
func HandleEditCommand(ctx context.Context, svc TaskService, db *sqlx.DB, id tasks.ID, title, description *string) (tasks.Task, error) {
	task, err := cachedTask(db, id)
	if err != nil {
		return tasks.Task{}, err
	}

	draft := tasks.StartEditing(task)
	if !draft.Editing {
		return tasks.Task{}, tasks.ErrNotEditable
	}
	if title != nil {
		draft.DraftTitle = *title
	}
	if description != nil {
		draft.DraftDescription = *description
	}

	edit, err := tasks.PrepareEdit(task, draft.Draft())
	if err != nil {
		return tasks.Task{}, err
	}

	updated, err := svc.EditTask(ctx, id, edit)
	if err != nil {
		return tasks.Task{}, err
	}
	task.Title = updated.Title
	task.Description = updated.Description
	return task, database.UpsertTask(db, task)
}

// HandleCompleteCommand completes a task due today: a one-off task is
// marked completed and a recurring task is rescheduled.
func HandleCompleteCommand(ctx context.Context, svc TaskService, db *sqlx.DB, id tasks.ID, today tasks.Date) (tasks.Task, error) {
	task, err := cachedTask(db, id)
	if err != nil {
		return tasks.Task{}, err
	}
	if !tasks.CanComplete(task, today) {
		return tasks.Task{}, fmt.Errorf("task %s: %w", id, ErrNotCompletable)
	}

	if task.Frequency == tasks.OneOff {
		completed, err := svc.SetCompleted(ctx, id, true)
		if err != nil {
			return tasks.Task{}, err
		}
		task.Completed = completed
	} else {
		result, err := svc.CompleteTask(ctx, id)
		if err != nil {
			return tasks.Task{}, err
		}
		task = tasks.ApplyCompletionResult(task, result)
	}

	for _, w := range tasks.CheckIntegrity(task) {
		zap.L().Warn("inconsistent task after completion", zap.Stringer("warning", w))
	}
	return task, database.UpsertTask(db, task)
}

// HandleToggleCommand flips a one-off task. Reopening is always allowed;
// completing follows the same rule as HandleCompleteCommand.
func HandleToggleCommand(ctx context.Context, svc TaskService, db *sqlx.DB, id tasks.ID, today tasks.Date) (tasks.Task, error) {
	task, err := cachedTask(db, id)
	if err != nil {
		return tasks.Task{}, err
	}
	if task.Frequency != tasks.OneOff {
		return tasks.Task{}, fmt.Errorf("task %s: %w", id, ErrNotOneOff)
	}
	if !task.Completed && !tasks.CanComplete(task, today) {
		return tasks.Task{}, fmt.Errorf("task %s: %w", id, ErrNotCompletable)
	}

	completed, err := svc.SetCompleted(ctx, id, !task.Completed)
	if err != nil {
		return tasks.Task{}, err
	}
	task.Completed = completed
	return task, database.UpsertTask(db, task)
}

// HandleDeleteCommand deletes a task on the server and from the cache.
// Unless skipConfirm is set the user is asked first; it reports whether
// the task was deleted.
func HandleDeleteCommand(ctx context.Context, svc TaskService, db *sqlx.DB, id tasks.ID, skipConfirm bool, in io.Reader, out io.Writer) (bool, error) {
	task, err := cachedTask(db, id)
	if err != nil {
		return false, err
	}

	if !skipConfirm {
		fmt.Fprintf(out, "Delete %q? This cannot be undone. (y/N): ", task.Title)
		if !confirmed(in) {
			fmt.Fprintln(out, "Operation cancelled.")
			return false, nil
		}
	}

	// already gone on the server is fine
	if err := svc.DeleteTask(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		return false, err
	}
	return true, database.DeleteTask(db, id)
}

func confirmed(in io.Reader) bool {
	var response string
	fmt.Fscanln(in, &response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
