package tasks

// MessageKind tags a DisplayMessage
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageCompletedOn
	MessageDueToday
	MessageDueTomorrow
	MessageScheduledFor
)

func (k MessageKind) String() string {
	switch k {
	case MessageCompletedOn:
		return "completed_on"
	case MessageDueToday:
		return "due_today"
	case MessageDueTomorrow:
		return "due_tomorrow"
	case MessageScheduledFor:
		return "scheduled_for"
	default:
		return "none"
	}
}

// DisplayMessage is the due-state line shown next to a task.
// Date is set only for MessageCompletedOn and MessageScheduledFor.
type DisplayMessage struct {
	Kind MessageKind
	Date *Date
}

// IsDueToday reports whether the API scheduled task for today
func IsDueToday(task Task, today Date) bool {
	return sameDate(task.DoNextBy, today)
}

// DueMessage picks the message to show for task on today.
// An overdue task (do_next_by before today) gets MessageNone.
func DueMessage(task Task, today Date) DisplayMessage {
	if task.Frequency == OneOff && task.Completed && task.LastCompleted != nil {
		return DisplayMessage{Kind: MessageCompletedOn, Date: task.LastCompleted.Ptr()}
	}
	if task.DoNextBy == nil {
		return DisplayMessage{Kind: MessageNone}
	}

	tomorrow := today.AddDays(1)
	next := *task.DoNextBy
	switch {
	case next.Equal(today):
		return DisplayMessage{Kind: MessageDueToday}
	case next.Equal(tomorrow):
		return DisplayMessage{Kind: MessageDueTomorrow}
	case next.After(tomorrow):
		return DisplayMessage{Kind: MessageScheduledFor, Date: next.Ptr()}
	}
	return DisplayMessage{Kind: MessageNone}
}

// CanComplete reports whether the complete action is enabled for task.
// One-off tasks can be completed until they are; recurring tasks only on
// the day the API scheduled them.
func CanComplete(task Task, today Date) bool {
	if task.Completed {
		return false
	}
	if task.Frequency == OneOff {
		return true
	}
	return IsDueToday(task, today)
}

// CanEdit reports whether title and description may still change
func CanEdit(task Task) bool {
	return !task.Completed
}

// ApplyCompletionResult merges a completion-event response into a copy of
// task. Dates the response leaves out are cleared, never kept from the cache.
func ApplyCompletionResult(task Task, result CompletionResult) Task {
	next := task
	next.LastCompleted = nil
	next.DoNextBy = nil
	if result.LastCompleted != nil {
		next.LastCompleted = result.LastCompleted.Ptr()
	}
	if result.DoNextBy != nil {
		next.DoNextBy = result.DoNextBy.Ptr()
	}
	if result.Completed != nil && task.Frequency == OneOff {
		next.Completed = *result.Completed
	}
	return next
}
