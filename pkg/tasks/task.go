package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Frequency is how often a task repeats
type Frequency string

const (
	OneOff Frequency = "one-off"
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
	Custom Frequency = "custom"
)

// Frequencies lists every known frequency in display order
var Frequencies = []Frequency{OneOff, Daily, Weekly, Custom}

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	switch f {
	case OneOff, Daily, Weekly, Custom:
		return true
	}
	return false
}

// Recurring reports whether f repeats
func (f Frequency) Recurring() bool {
	return f != OneOff
}

// ID is an opaque task identifier. The API may send it as a JSON number or
// string; it is kept as text either way.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Task is the client's cached copy of a task owned by the API
type Task struct {
	ID                  ID        `json:"id" yaml:"id"`
	Title               string    `json:"title" yaml:"title"`
	Description         string    `json:"description" yaml:"description"`
	Frequency           Frequency `json:"frequency" yaml:"frequency"`
	CustomFrequencyDays *int      `json:"custom_frequency_days,omitempty" yaml:"custom_frequency_days,omitempty"`
	StartDate           *Date     `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	Completed           bool      `json:"completed" yaml:"completed"`
	LastCompleted       *Date     `json:"last_completed,omitempty" yaml:"last_completed,omitempty"`
	DoNextBy            *Date     `json:"do_next_by,omitempty" yaml:"do_next_by,omitempty"`
}

// UnmarshalJSON defaults a missing frequency to one-off, which is what the
// API assumes for tasks created without one.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Frequency == "" {
		p.Frequency = OneOff
	}
	*t = Task(p)
	return nil
}

// CompletionResult is the part of a completion-event response the client merges
type CompletionResult struct {
	LastCompleted *Date `json:"last_completed"`
	DoNextBy      *Date `json:"do_next_by"`
	Completed     *bool `json:"completed,omitempty"`
}
