package tasks

// ViewState is the per-task UI state owned by the rendering layer
type ViewState struct {
	Editing          bool
	DraftTitle       string
	DraftDescription string
}

// Viewing is the resting state
var Viewing = ViewState{}

// StartEditing seeds the drafts from task, or stays Viewing when the task
// can no longer be edited.
func StartEditing(task Task) ViewState {
	if !CanEdit(task) {
		return Viewing
	}
	return ViewState{Editing: true, DraftTitle: task.Title, DraftDescription: task.Description}
}

// Draft returns the edit payload for the current drafts
func (v ViewState) Draft() Edit {
	return Edit{Title: v.DraftTitle, Description: v.DraftDescription}
}
