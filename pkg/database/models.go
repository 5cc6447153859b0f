package database

import (
	"database/sql"
	"fmt"

	"taskflow/pkg/tasks"
)

// TaskFilter represents the current task filter mode
type TaskFilter int

const (
	AllTasksFilter  TaskFilter = iota // Show all tasks regardless of status
	DueTodayFilter                    // Show only tasks the API scheduled for today
	OpenTasksFilter                   // Show only tasks not completed
	DoneTasksFilter                   // Show only completed tasks
)

func (f TaskFilter) String() string {
	switch f {
	case DueTodayFilter:
		return "due today"
	case OpenTasksFilter:
		return "open"
	case DoneTasksFilter:
		return "done"
	default:
		return "all"
	}
}

// taskRow is a cached task as stored in the tasks table
type taskRow struct {
	ID                  string         `db:"id"`
	Title               string         `db:"title"`
	Description         string         `db:"description"`
	Frequency           string         `db:"frequency"`
	CustomFrequencyDays sql.NullInt64  `db:"custom_frequency_days"`
	StartDate           sql.NullString `db:"start_date"`
	Completed           bool           `db:"completed"`
	LastCompleted       sql.NullString `db:"last_completed"`
	DoNextBy            sql.NullString `db:"do_next_by"`
}

func rowFromTask(t tasks.Task) taskRow {
	row := taskRow{
		ID:            string(t.ID),
		Title:         t.Title,
		Description:   t.Description,
		Frequency:     string(t.Frequency),
		Completed:     t.Completed,
		StartDate:     nullDate(t.StartDate),
		LastCompleted: nullDate(t.LastCompleted),
		DoNextBy:      nullDate(t.DoNextBy),
	}
	if t.CustomFrequencyDays != nil {
		row.CustomFrequencyDays = sql.NullInt64{Int64: int64(*t.CustomFrequencyDays), Valid: true}
	}
	return row
}

func (r taskRow) toTask() (tasks.Task, error) {
	t := tasks.Task{
		ID:          tasks.ID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Frequency:   tasks.Frequency(r.Frequency),
		Completed:   r.Completed,
	}
	if r.CustomFrequencyDays.Valid {
		days := int(r.CustomFrequencyDays.Int64)
		t.CustomFrequencyDays = &days
	}

	var err error
	if t.StartDate, err = parseNullDate(r.StartDate); err != nil {
		return tasks.Task{}, fmt.Errorf("task %s start_date: %w", r.ID, err)
	}
	if t.LastCompleted, err = parseNullDate(r.LastCompleted); err != nil {
		return tasks.Task{}, fmt.Errorf("task %s last_completed: %w", r.ID, err)
	}
	if t.DoNextBy, err = parseNullDate(r.DoNextBy); err != nil {
		return tasks.Task{}, fmt.Errorf("task %s do_next_by: %w", r.ID, err)
	}
	return t, nil
}

func nullDate(d *tasks.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) (*tasks.Date, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := tasks.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
