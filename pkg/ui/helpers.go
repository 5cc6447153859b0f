package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/pkg/api"
	"taskflow/pkg/database"
	"taskflow/pkg/tasks"
)

// loadTasks retrieves cached tasks for the current filter and redraws the table
func (m *Model) loadTasks() {
	items, err := database.LoadTasks(m.db, m.taskFilter, m.today(), m.searchTerm)
	if err != nil {
		m.err = err
		return
	}

	// Flatten the groups so items follows the row order
	var flat []tasks.Task
	for _, group := range m.GroupTasks(items) {
		flat = append(flat, group.Tasks...)
	}
	m.items = flat
	m.refreshRows()
}

// refreshRows rebuilds the table rows from m.items without touching the cache
func (m *Model) refreshRows() {
	today := m.today()
	var rows []table.Row
	var rowTasks []int

	// GroupTasks is stable over already sorted input
	offset := 0
	groups := m.GroupTasks(m.items)
	for _, group := range groups {
		// Add group header if grouping is enabled
		if m.groupBy != GroupByNone {
			header := fmt.Sprintf("== %s ==", group.GroupName)
			rows = append(rows, table.Row{
				lipgloss.NewStyle().
					Bold(true).
					Foreground(lipgloss.Color(m.styles.AccentColor)).
					Render(header),
			})
			rowTasks = append(rowTasks, -1)
		}

		for i, item := range group.Tasks {
			rows = append(rows, table.Row{m.renderTask(item, today)})
			rowTasks = append(rowTasks, offset+i)
		}
		offset += len(group.Tasks)

		// Add empty line between groups
		if m.groupBy != GroupByNone && len(groups) > 1 {
			rows = append(rows, table.Row{""})
			rowTasks = append(rowTasks, -1)
		}
	}

	m.rowTasks = rowTasks
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// renderTask draws one task row
func (m *Model) renderTask(item tasks.Task, today tasks.Date) string {
	status := "[ ]"
	switch {
	case m.busy[item.ID]:
		status = "[…]"
	case item.Frequency.Recurring():
		status = "(↻)"
	case item.Completed:
		status = "[x]"
	}

	text := item.Title
	if item.Description != "" {
		text += " - " + item.Description
	}
	if item.Completed {
		text = lipgloss.NewStyle().Strikethrough(true).Render(text)
	}

	parts := []string{status, text}
	parts = append(parts, lipgloss.NewStyle().Faint(true).Render("["+m.loc.Frequency(item)+"]"))

	msg := tasks.DueMessage(item, today)
	if rendered := m.loc.DisplayMessage(msg); rendered != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(m.messageColor(msg.Kind))).Render(rendered))
	}
	if item.Frequency.Recurring() && item.LastCompleted != nil {
		last := m.loc.Text("last_completed", map[string]interface{}{"Date": item.LastCompleted.String()})
		parts = append(parts, lipgloss.NewStyle().Faint(true).Render("("+last+")"))
	}

	return strings.Join(parts, " ")
}

func (m *Model) messageColor(kind tasks.MessageKind) string {
	switch kind {
	case tasks.MessageDueToday:
		return m.styles.DueTodayColor
	case tasks.MessageCompletedOn:
		return m.styles.CompletedColor
	default:
		return m.styles.ScheduledColor
	}
}

// selectedTask returns the task under the cursor, or nil on a header row
func (m *Model) selectedTask() *tasks.Task {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rowTasks) {
		return nil
	}
	idx := m.rowTasks[cursor]
	if idx < 0 || idx >= len(m.items) {
		return nil
	}
	return &m.items[idx]
}

// formInputs returns the inputs of the current form in focus order
func (m *Model) formInputs() []*textinput.Model {
	switch m.mode {
	case LoginMode:
		return []*textinput.Model{&m.usernameInput, &m.passwordInput}
	case EditMode:
		return []*textinput.Model{&m.titleInput, &m.descInput}
	default:
		return []*textinput.Model{&m.titleInput, &m.descInput, &m.startDateInput, &m.frequencyInput, &m.customDaysInput}
	}
}

// focusInput focuses inputs[idx] and blurs the rest
func (m *Model) focusInput(inputs []*textinput.Model, idx int) {
	for i, in := range inputs {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	inputs := m.formInputs()
	m.activeInput = (m.activeInput + 1) % len(inputs)
	m.focusInput(inputs, m.activeInput)
}

// focusPreviousInput cycles through the form inputs
func (m *Model) focusPreviousInput() {
	inputs := m.formInputs()
	m.activeInput = (m.activeInput - 1 + len(inputs)) % len(inputs)
	m.focusInput(inputs, m.activeInput)
}

// submitForm processes the form data based on the current mode
func (m *Model) submitForm() tea.Cmd {
	switch m.mode {
	case LoginMode:
		return m.submitLogin()
	case AddMode:
		return m.submitAdd()
	case EditMode:
		return m.submitEdit()
	}
	return nil
}

func (m *Model) submitLogin() tea.Cmd {
	creds := api.Credentials{
		Username: strings.TrimSpace(m.usernameInput.Value()),
		Password: m.passwordInput.Value(),
	}
	if creds.Username == "" || creds.Password == "" {
		m.err = fmt.Errorf("username and password are required")
		return nil
	}
	m.err = nil
	m.status = "Logging in…"
	return m.loginCmd(creds)
}

func (m *Model) submitAdd() tea.Cmd {
	today := m.today()
	n, err := parseNewTask(
		m.titleInput.Value(),
		m.descInput.Value(),
		m.startDateInput.Value(),
		m.frequencyInput.Value(),
		m.customDaysInput.Value(),
		today,
	)
	if err == nil {
		err = n.Validate(today)
	}
	if err != nil {
		// Stay in the form so the input can be fixed
		m.err = err
		return nil
	}

	m.err = nil
	m.mode = NormalMode
	m.resetInputs()
	m.status = "Adding task…"
	return m.createCmd(n, today)
}

func (m *Model) submitEdit() tea.Cmd {
	if m.editingItem == nil {
		m.mode = NormalMode
		return nil
	}

	m.viewState.DraftTitle = m.titleInput.Value()
	m.viewState.DraftDescription = m.descInput.Value()
	edit, err := tasks.PrepareEdit(*m.editingItem, m.viewState.Draft())
	if err != nil {
		m.err = err
		return nil
	}

	id := m.editingItem.ID
	m.err = nil
	m.busy[id] = true
	m.mode = NormalMode
	m.editingItem = nil
	m.viewState = tasks.Viewing
	m.resetInputs()
	m.refreshRows()
	return m.editCmd(id, edit)
}

// parseNewTask turns the add form's raw values into a NewTask. An empty
// start date means today and an empty frequency means one-off; the
// repeat interval is only read for custom tasks.
func parseNewTask(title, desc, startDate, frequency, customDays string, today tasks.Date) (tasks.NewTask, error) {
	n := tasks.NewTask{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(desc),
		Frequency:   tasks.Frequency(strings.ToLower(strings.TrimSpace(frequency))),
		StartDate:   today,
	}
	if n.Frequency == "" {
		n.Frequency = tasks.OneOff
	}

	if raw := strings.TrimSpace(startDate); raw != "" {
		d, err := tasks.ParseDate(raw)
		if err != nil {
			return tasks.NewTask{}, fmt.Errorf("%w: start date must be YYYY-MM-DD", tasks.ErrValidation)
		}
		n.StartDate = d
	}

	if n.Frequency == tasks.Custom {
		days, err := strconv.Atoi(strings.TrimSpace(customDays))
		if err != nil {
			return tasks.NewTask{}, fmt.Errorf("%w: repeat interval must be a whole number of days", tasks.ErrValidation)
		}
		n.CustomFrequencyDays = &days
	}

	return n, nil
}
