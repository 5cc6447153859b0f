package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"taskflow/pkg/tasks"
)

// Export formats
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
	ExportTxt  = "txt"
)

// HandleExportCommand writes list to filename in the given format
func HandleExportCommand(list []tasks.Task, filename, exportType string) error {
	// Ensure directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content, err := encodeTasks(list, exportType)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func encodeTasks(list []tasks.Task, exportType string) ([]byte, error) {
	switch exportType {
	case ExportJSON:
		content, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal tasks to JSON: %w", err)
		}
		return content, nil

	case ExportYAML:
		content, err := yaml.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("marshal tasks to YAML: %w", err)
		}
		return content, nil

	case ExportTxt:
		// One section per next due date, in list order
		var lines []string
		lastDate := "-"
		for _, task := range list {
			dateStr := "unscheduled"
			if task.DoNextBy != nil {
				dateStr = task.DoNextBy.String()
			}
			if dateStr != lastDate {
				lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
				lastDate = dateStr
			}

			status := " "
			if task.Completed {
				status = "x"
			}
			line := fmt.Sprintf("- [%s] %s", status, task.Title)
			if task.Description != "" {
				line += " - " + task.Description
			}
			switch {
			case task.Frequency == tasks.Custom && task.CustomFrequencyDays != nil:
				line += fmt.Sprintf(" (%s %d)", task.Frequency, *task.CustomFrequencyDays)
			case task.Frequency.Recurring():
				line += fmt.Sprintf(" (%s)", task.Frequency)
			}
			lines = append(lines, line)
		}
		return []byte(strings.TrimSpace(strings.Join(lines, "\n")) + "\n"), nil

	default:
		return nil, fmt.Errorf("unknown export type: %s", exportType)
	}
}
