package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskflow/pkg/tasks"
)

const upsertQuery = `
	INSERT INTO tasks (id, title, description, frequency, custom_frequency_days, start_date, completed, last_completed, do_next_by)
	VALUES (:id, :title, :description, :frequency, :custom_frequency_days, :start_date, :completed, :last_completed, :do_next_by)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		frequency = excluded.frequency,
		custom_frequency_days = excluded.custom_frequency_days,
		start_date = excluded.start_date,
		completed = excluded.completed,
		last_completed = excluded.last_completed,
		do_next_by = excluded.do_next_by`

// LoadTasks retrieves cached tasks matching filter and searchTerm.
// today is only consulted by DueTodayFilter.
func LoadTasks(db *sqlx.DB, filter TaskFilter, today tasks.Date, searchTerm string) ([]tasks.Task, error) {
	whereClause, args := BuildWhereClause(filter, today, searchTerm)

	query := `
		SELECT id, title, description, frequency, custom_frequency_days, start_date, completed, last_completed, do_next_by
		FROM tasks
	`
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY do_next_by IS NULL, do_next_by, title"

	var rows []taskRow
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	items := make([]tasks.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toTask()
		if err != nil {
			return nil, err
		}
		items = append(items, task)
	}

	zap.L().Debug("loaded tasks from cache", zap.Int("count", len(items)), zap.Stringer("filter", filter))
	return items, nil
}

// BuildWhereClause builds a where clause with ? placeholders and its arguments
func BuildWhereClause(filter TaskFilter, today tasks.Date, searchTerm string) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	switch filter {
	case AllTasksFilter:
		// No additional filter needed for all tasks
	case DueTodayFilter:
		conditions = append(conditions, "do_next_by = ?")
		args = append(args, today.String())
	case OpenTasksFilter:
		conditions = append(conditions, "completed = ?")
		args = append(args, false)
	case DoneTasksFilter:
		conditions = append(conditions, "completed = ?")
		args = append(args, true)
	}

	if searchTerm = strings.TrimSpace(searchTerm); searchTerm != "" {
		pattern := "%" + searchTerm + "%"
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}

	return strings.Join(conditions, " AND "), args
}

// ReplaceTasks swaps the whole cache for a fresh listing from the API
func ReplaceTasks(db *sqlx.DB, list []tasks.Task) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return err
	}
	for _, task := range list {
		if _, err := tx.NamedExec(upsertQuery, rowFromTask(task)); err != nil {
			return fmt.Errorf("cache task %s: %w", task.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	zap.L().Debug("replaced cached tasks", zap.Int("count", len(list)))
	return nil
}

// UpsertTask inserts or updates one cached task
func UpsertTask(db *sqlx.DB, task tasks.Task) error {
	_, err := db.NamedExec(upsertQuery, rowFromTask(task))
	zap.L().Debug("cached task", zap.String("id", string(task.ID)))
	return err
}

// DeleteTask removes a task from the cache
func DeleteTask(db *sqlx.DB, id tasks.ID) error {
	_, err := db.Exec(db.Rebind("DELETE FROM tasks WHERE id = ?"), string(id))
	return err
}

// GetTask returns one cached task
func GetTask(db *sqlx.DB, id tasks.ID) (tasks.Task, error) {
	var row taskRow
	err := db.Get(&row, db.Rebind(`
		SELECT id, title, description, frequency, custom_frequency_days, start_date, completed, last_completed, do_next_by
		FROM tasks WHERE id = ?`), string(id))
	if err != nil {
		return tasks.Task{}, err
	}
	return row.toTask()
}

// PurgeTasks deletes cached tasks matching filter and reports how many went
func PurgeTasks(db *sqlx.DB, filter TaskFilter, today tasks.Date) (int64, error) {
	whereClause, args := BuildWhereClause(filter, today, "")

	query := "DELETE FROM tasks"
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	result, err := db.Exec(db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
