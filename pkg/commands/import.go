package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskflow/pkg/database"
	"taskflow/pkg/tasks"
)

var (
	// DD.MM.YYYY: or YYYY-MM-DD:
	dateRegex = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)
	// trailing "(daily)", "(weekly)", "(custom 3)" ...
	frequencyRegex = regexp.MustCompile(`\s*\((one-off|daily|weekly|custom (\d+))\)$`)
)

// ImportResult counts what an import did
type ImportResult struct {
	Added   int
	Skipped int
	Failed  int
}

// HandleImportCommand creates a task for every open "- [ ] title" line of
// a txt export. Date headers set the start date of the lines below them;
// dates in the past fall back to today. Completed lines are skipped and
// a failing line does not stop the import.
func HandleImportCommand(ctx context.Context, svc TaskService, db *sqlx.DB, r io.Reader, out io.Writer, today tasks.Date) (ImportResult, error) {
	var result ImportResult
	start := today

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if dateMatch := dateRegex.FindStringSubmatch(line); dateMatch != nil {
			start = headerDate(dateMatch, today)
			continue
		}

		// Check if line is a task (starts with -)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		taskText := strings.TrimSpace(strings.TrimPrefix(line, "- "))

		if strings.HasPrefix(taskText, "[x]") {
			result.Skipped++
			continue
		}
		taskText = strings.TrimSpace(strings.TrimPrefix(taskText, "[ ]"))
		if taskText == "" {
			continue
		}

		n := parseImportLine(taskText, start)
		task, err := svc.CreateTask(ctx, n, today)
		if err != nil {
			fmt.Fprintf(out, "Error adding task '%s': %v\n", n.Title, err)
			result.Failed++
			continue
		}
		if err := database.UpsertTask(db, task); err != nil {
			return result, fmt.Errorf("cache task %s: %w", task.ID, err)
		}
		result.Added++
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}

	zap.L().Info("imported tasks",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func headerDate(m []string, today tasks.Date) tasks.Date {
	var day, month, year int
	if m[1] != "" {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		year, _ = strconv.Atoi(m[4])
		month, _ = strconv.Atoi(m[5])
		day, _ = strconv.Atoi(m[6])
	}

	d, err := tasks.ParseDate(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
	if err != nil || d.Before(today) {
		return today
	}
	return d
}

// parseImportLine splits "title - description (daily)" into a NewTask.
// A custom interval is written "(custom N)".
func parseImportLine(text string, start tasks.Date) tasks.NewTask {
	n := tasks.NewTask{Frequency: tasks.OneOff, StartDate: start}

	if m := frequencyRegex.FindStringSubmatch(text); m != nil {
		n.Frequency = tasks.Frequency(m[1])
		if m[2] != "" {
			days, _ := strconv.Atoi(m[2])
			n.Frequency = tasks.Custom
			n.CustomFrequencyDays = &days
		}
		text = strings.TrimSuffix(text, m[0])
	}

	title, desc, _ := strings.Cut(text, " - ")
	n.Title = strings.TrimSpace(title)
	n.Description = strings.TrimSpace(desc)
	return n
}
