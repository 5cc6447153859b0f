package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"taskflow/pkg/database"
	"taskflow/pkg/tasks"
)

// AddOptions are the flags of the add command
type AddOptions struct {
	Description string
	Frequency   string
	Every       int
	Start       string
}

// HandleAddTask creates a task and caches the server's copy of it
func HandleAddTask(ctx context.Context, svc TaskService, db *sqlx.DB, title string, opts AddOptions, today tasks.Date) (tasks.Task, error) {
	n, err := opts.newTask(title, today)
	if err != nil {
		return tasks.Task{}, err
	}

	task, err := svc.CreateTask(ctx, n, today)
	if err != nil {
		return tasks.Task{}, err
	}
	if err := database.UpsertTask(db, task); err != nil {
		return tasks.Task{}, fmt.Errorf("cache task %s: %w", task.ID, err)
	}
	return task, nil
}

// newTask builds the payload. The start date defaults to today and
// --every implies a custom frequency.
func (o AddOptions) newTask(title string, today tasks.Date) (tasks.NewTask, error) {
	n := tasks.NewTask{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(o.Description),
		Frequency:   tasks.Frequency(strings.ToLower(strings.TrimSpace(o.Frequency))),
		StartDate:   today,
	}

	if o.Start != "" {
		start, err := tasks.ParseDate(o.Start)
		if err != nil {
			return tasks.NewTask{}, fmt.Errorf("%w: start date must be YYYY-MM-DD", tasks.ErrValidation)
		}
		n.StartDate = start
	}

	if o.Every != 0 {
		if n.Frequency == "" {
			n.Frequency = tasks.Custom
		}
		every := o.Every
		n.CustomFrequencyDays = &every
	}
	if n.Frequency == "" {
		n.Frequency = tasks.OneOff
	}

	return n, n.Validate(today)
}
