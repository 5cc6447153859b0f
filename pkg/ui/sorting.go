package ui

import (
	"sort"
	"strings"

	"taskflow/pkg/tasks"
)

// SortBy selects the task attribute the list is ordered by
type SortBy int

const (
	SortByDueDate SortBy = iota
	SortByTitle
	SortByFrequency
	SortByStatus
	sortByCount
)

func (s SortBy) String() string {
	switch s {
	case SortByTitle:
		return "title"
	case SortByFrequency:
		return "frequency"
	case SortByStatus:
		return "status"
	default:
		return "due date"
	}
}

// SortOrder is ascending or descending
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

func (o SortOrder) String() string {
	if o == SortDesc {
		return "desc"
	}
	return "asc"
}

// GroupBy selects how the list is split into sections
type GroupBy int

const (
	GroupByNone GroupBy = iota
	GroupByFrequency
	GroupByDueMessage
	groupByCount
)

func (g GroupBy) String() string {
	switch g {
	case GroupByFrequency:
		return "frequency"
	case GroupByDueMessage:
		return "due status"
	default:
		return "none"
	}
}

// GroupedTasks represents tasks grouped by a common attribute
type GroupedTasks struct {
	GroupName string
	Tasks     []tasks.Task
}

// SortTasks sorts tasks based on the model's sort settings. Tasks without
// a next due date always sort after those with one when ordering by date.
func (m *Model) SortTasks(list []tasks.Task) []tasks.Task {
	sorted := make([]tasks.Task, len(list))
	copy(sorted, list)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		var result bool

		switch m.sortBy {
		case SortByTitle:
			result = strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByFrequency:
			result = frequencyRank(a.Frequency) < frequencyRank(b.Frequency)
		case SortByStatus:
			result = !a.Completed && b.Completed // Open first
		default:
			if a.DoNextBy == nil || b.DoNextBy == nil {
				return a.DoNextBy != nil && b.DoNextBy == nil
			}
			result = a.DoNextBy.Before(*b.DoNextBy)
		}

		if m.sortOrder == SortDesc {
			result = !result && !sameSortKey(m.sortBy, a, b)
		}
		return result
	})

	return sorted
}

// GroupTasks groups tasks based on the model's group setting
func (m *Model) GroupTasks(list []tasks.Task) []GroupedTasks {
	if m.groupBy == GroupByNone {
		return []GroupedTasks{{GroupName: "", Tasks: m.SortTasks(list)}}
	}

	today := m.today()
	groups := make(map[string][]tasks.Task)
	var order []string

	for _, task := range list {
		var groupKey string

		switch m.groupBy {
		case GroupByFrequency:
			groupKey = m.loc.Frequency(task)
		case GroupByDueMessage:
			msg := tasks.DueMessage(task, today)
			groupKey = m.loc.Text("group_"+msg.Kind.String(), nil)
		}

		if _, ok := groups[groupKey]; !ok {
			order = append(order, groupKey)
		}
		groups[groupKey] = append(groups[groupKey], task)
	}

	sort.Strings(order)

	result := make([]GroupedTasks, 0, len(order))
	for _, name := range order {
		result = append(result, GroupedTasks{
			GroupName: name,
			Tasks:     m.SortTasks(groups[name]),
		})
	}

	return result
}

func frequencyRank(f tasks.Frequency) int {
	for i, known := range tasks.Frequencies {
		if f == known {
			return i
		}
	}
	return len(tasks.Frequencies)
}

func sameSortKey(by SortBy, a, b tasks.Task) bool {
	switch by {
	case SortByTitle:
		return strings.EqualFold(a.Title, b.Title)
	case SortByFrequency:
		return a.Frequency == b.Frequency
	case SortByStatus:
		return a.Completed == b.Completed
	default:
		if a.DoNextBy == nil || b.DoNextBy == nil {
			return a.DoNextBy == nil && b.DoNextBy == nil
		}
		return a.DoNextBy.Equal(*b.DoNextBy)
	}
}
