package tasks

import "fmt"

// IntegrityWarning describes a task the API returned in a state the data
// model does not allow. The task itself is left as received.
type IntegrityWarning struct {
	TaskID ID
	Field  string
	Reason string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("task %s: %s: %s", w.TaskID, w.Field, w.Reason)
}

// CheckIntegrity lists every contract violation in task
func CheckIntegrity(task Task) []IntegrityWarning {
	var warnings []IntegrityWarning
	add := func(field, reason string) {
		warnings = append(warnings, IntegrityWarning{TaskID: task.ID, Field: field, Reason: reason})
	}

	if !task.Frequency.Valid() {
		add("frequency", fmt.Sprintf("unknown frequency %q", task.Frequency))
	}
	if task.Completed && task.Frequency.Valid() && task.Frequency.Recurring() {
		add("completed", "set on a recurring task")
	}

	switch {
	case task.Frequency == Custom && task.CustomFrequencyDays == nil:
		add("custom_frequency_days", "missing on a custom task")
	case task.Frequency == Custom && *task.CustomFrequencyDays < 1:
		add("custom_frequency_days", fmt.Sprintf("must be at least 1, got %d", *task.CustomFrequencyDays))
	case task.Frequency != Custom && task.CustomFrequencyDays != nil:
		add("custom_frequency_days", "set on a non-custom task")
	}

	return warnings
}
