package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"taskflow/pkg/database"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		title := " TaskFlow "
		if name := m.session.Username(); name != "" {
			title = fmt.Sprintf(" TaskFlow - %s ", name)
		}
		sb.WriteString(m.titleBar(title, m.styles.AccentColor))
		if m.offline {
			sb.WriteString(" ")
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.styles.WarningColor)).
				Render("offline, showing cached tasks"))
		}
		sb.WriteString("\n\n")

		if len(m.items) == 0 {
			sb.WriteString(lipgloss.NewStyle().Faint(true).Render("No tasks here. Press a to add one."))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
		}

		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(m.viewInfo()))
		sb.WriteString("\n")

		if m.status != "" {
			sb.WriteString(lipgloss.NewStyle().Faint(true).Render(m.status))
			sb.WriteString("\n")
		}

	case AddMode:
		sb.WriteString(m.titleBar(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case LoginMode:
		sb.WriteString(m.titleBar(" TaskFlow - Log in ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		if m.status != "" {
			sb.WriteString(m.status)
			sb.WriteString("\n\n")
		}
		sb.WriteString("Username:\n")
		sb.WriteString(m.usernameInput.View())
		sb.WriteString("\n\n")
		sb.WriteString("Password:\n")
		sb.WriteString(m.passwordInput.View())
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render(
			fmt.Sprintf("No account yet? Run `taskflow register` against %s", m.config.APIURL)))

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.editingItem != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.editingItem.Title))
			sb.WriteString(fmt.Sprintf("Description: %s\n", m.editingItem.Description))
			sb.WriteString(fmt.Sprintf("Frequency: %s\n", m.loc.Frequency(*m.editingItem)))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case SearchMode:
		sb.WriteString(m.titleBar(" Search Tasks ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Enter search term to find tasks:")
		sb.WriteString("\n\n")
		sb.WriteString(m.searchInput.View())

	case HelpViewMode:
		// Fullscreen commands view
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")

		keyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.AccentColor)).
			Bold(true)
		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.NormalTextColor))

		addCommand := func(binding key.Binding) {
			sb.WriteString(fmt.Sprintf("%s: %s\n",
				descStyle.Render(binding.Help().Desc),
				keyStyle.Render(strings.Join(binding.Keys(), ", "))))
		}

		addCommand(m.keyMap.QuitApp)
		addCommand(m.keyMap.ShowHelp)
		addCommand(m.keyMap.CompleteTask)
		addCommand(m.keyMap.AddTask)
		addCommand(m.keyMap.EditTask)
		addCommand(m.keyMap.DeleteTask)
		addCommand(m.keyMap.Refresh)
		addCommand(m.keyMap.Logout)

		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Filtering and Sorting"))
		sb.WriteString("\n\n")

		addCommand(m.keyMap.ToggleDueToday)
		addCommand(m.keyMap.ShowDoneTasks)
		addCommand(m.keyMap.ShowOpenTasks)
		addCommand(m.keyMap.SearchTasks)
		addCommand(m.keyMap.ToggleSortBy)
		addCommand(m.keyMap.ToggleGroupBy)
		addCommand(m.keyMap.ToggleSortOrder)
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

// viewInfo describes the active filter, search and ordering
func (m Model) viewInfo() string {
	var filterPart string
	switch m.taskFilter {
	case database.DueTodayFilter:
		filterPart = "tasks due today"
	case database.DoneTasksFilter:
		filterPart = "completed tasks"
	case database.OpenTasksFilter:
		filterPart = "open tasks"
	default:
		filterPart = "all tasks"
	}

	// show search filter
	if m.searchTerm != "" {
		filterPart += fmt.Sprintf(" (search filter: %s)", m.searchTerm)
	}

	sortInfo := ""
	if m.sortBy != SortByDueDate || m.sortOrder != SortAsc || m.groupBy != GroupByNone {
		groupByStr := ""
		if m.groupBy != GroupByNone {
			groupByStr = fmt.Sprintf(", grouped by %s", m.groupBy)
		}
		sortInfo = fmt.Sprintf(" | sorted by %s (%s)%s", m.sortBy, m.sortOrder, groupByStr)
	}

	return fmt.Sprintf("Showing %s%s", filterPart, sortInfo)
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case NormalMode:
		addBinding(m.keyMap.AddTask, "add")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.DeleteTask, "del")
		addBinding(m.keyMap.CompleteTask, "complete")
		addBinding(m.keyMap.Refresh, "refresh")
		addBinding(m.keyMap.ToggleDueToday, "today")
		addBinding(m.keyMap.SearchTasks, "search")
		addAction("s/g/o", "sort/grp/ord")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case LoginMode:
		addAction("tab", "next field")
		addAction("enter", "log in")
		addAction("esc", "quit")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case SearchMode:
		addAction("enter", "search")
		addAction("esc", "cancel")

	case HelpViewMode:
		addAction(m.keyMap.ShowHelp.Help().Key+"/esc", "back")
		addBinding(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString("Title:\n")
	sb.WriteString(m.titleInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Description:\n")
	sb.WriteString(m.descInput.View())

	// Schedule fields are fixed once a task exists
	if m.mode == AddMode {
		sb.WriteString("\n\n")
		sb.WriteString("Start Date (YYYY-MM-DD):\n")
		sb.WriteString(m.startDateInput.View())
		sb.WriteString("\n\n")

		sb.WriteString("Frequency (one-off, daily, weekly, custom):\n")
		sb.WriteString(m.frequencyInput.View())
		sb.WriteString("\n\n")

		sb.WriteString("Repeat Every X Days (custom only):\n")
		sb.WriteString(m.customDaysInput.View())
	}

	return sb.String()
}
