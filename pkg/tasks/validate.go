package tasks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation wraps every create/edit input error
	ErrValidation = errors.New("validation failed")
	// ErrNotEditable is returned when editing a completed task
	ErrNotEditable = errors.New("task is completed and can no longer be edited")
)

// NewTask is the payload for creating a task
type NewTask struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Frequency           Frequency `json:"frequency"`
	CustomFrequencyDays *int      `json:"custom_frequency_days"`
	StartDate           Date      `json:"start_date"`
}

// Validate checks the payload against the creation rules; today is the
// earliest allowed start date.
func (n NewTask) Validate(today Date) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !n.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, n.Frequency)
	}
	if n.Frequency == Custom {
		if n.CustomFrequencyDays == nil || *n.CustomFrequencyDays < 1 {
			return fmt.Errorf("%w: custom frequency must be a whole number greater than 0", ErrValidation)
		}
	} else if n.CustomFrequencyDays != nil {
		return fmt.Errorf("%w: custom frequency days only apply to custom tasks", ErrValidation)
	}
	if n.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if n.StartDate.Before(today) {
		return fmt.Errorf("%w: start date %s is in the past", ErrValidation, n.StartDate)
	}
	return nil
}

// Edit is the payload for changing a task's text
type Edit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (e Edit) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// PrepareEdit checks that edit may be applied to task
func PrepareEdit(task Task, edit Edit) (Edit, error) {
	if !CanEdit(task) {
		return Edit{}, ErrNotEditable
	}
	edit.Title = strings.TrimSpace(edit.Title)
	edit.Description = strings.TrimSpace(edit.Description)
	if err := edit.Validate(); err != nil {
		return Edit{}, err
	}
	return edit, nil
}
