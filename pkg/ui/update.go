package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"taskflow/pkg/api"
	"taskflow/pkg/database"
	"taskflow/pkg/session"
	"taskflow/pkg/tasks"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd
	// keys bound to an action never reach the table
	handled := false

	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.handleTasksLoaded(msg)

	case loggedInMsg:
		cmds = append(cmds, m.handleLoggedIn(msg))

	case taskCreatedMsg:
		if m.handleAPIError(msg.err) {
			break
		}
		if err := database.UpsertTask(m.db, msg.task); err != nil {
			m.err = err
			break
		}
		m.reportIntegrity([]tasks.Task{msg.task})
		m.status = fmt.Sprintf("Added %q", msg.task.Title)
		m.loadTasks()

	case taskEditedMsg:
		delete(m.busy, msg.id)
		if m.handleAPIError(msg.err) {
			m.refreshRows()
			break
		}
		m.updateCached(msg.id, func(t tasks.Task) tasks.Task {
			t.Title = msg.task.Title
			t.Description = msg.task.Description
			return t
		})

	case taskToggledMsg:
		delete(m.busy, msg.id)
		if m.handleAPIError(msg.err) {
			m.refreshRows()
			break
		}
		m.updateCached(msg.id, func(t tasks.Task) tasks.Task {
			t.Completed = msg.completed
			return t
		})

	case taskCompletedMsg:
		delete(m.busy, msg.id)
		if m.handleAPIError(msg.err) {
			m.refreshRows()
			break
		}
		m.updateCached(msg.id, func(t tasks.Task) tasks.Task {
			return tasks.ApplyCompletionResult(t, msg.result)
		})

	case taskDeletedMsg:
		delete(m.busy, msg.id)
		// a task the API no longer knows is as good as deleted
		if msg.err != nil && !errors.Is(msg.err, api.ErrNotFound) {
			m.handleAPIError(msg.err)
			m.refreshRows()
			break
		}
		if err := database.DeleteTask(m.db, msg.id); err != nil {
			m.err = err
			break
		}
		m.status = "Task deleted"
		m.loadTasks()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case NormalMode:
			handled = true
			switch {
			case key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = HelpViewMode

			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit

			case key.Matches(msg, m.keyMap.Refresh):
				m.status = "Refreshing…"
				cmds = append(cmds, m.refreshCmd())

			case key.Matches(msg, m.keyMap.CompleteTask):
				cmds = append(cmds, m.completeSelected())

			case key.Matches(msg, m.keyMap.AddTask):
				m.mode = AddMode
				m.err = nil
				m.resetInputs()

			case key.Matches(msg, m.keyMap.EditTask):
				m.startEdit()

			case key.Matches(msg, m.keyMap.DeleteTask):
				if task := m.selectedTask(); task != nil {
					if m.busy[task.ID] {
						m.status = "Waiting for the server…"
						break
					}
					item := *task
					m.editingItem = &item
					m.mode = DeleteConfirmMode
				}

			case key.Matches(msg, m.keyMap.ToggleDueToday):
				if m.taskFilter == database.DueTodayFilter {
					m.taskFilter = database.AllTasksFilter
				} else {
					m.taskFilter = database.DueTodayFilter
				}
				m.loadTasks()

			case key.Matches(msg, m.keyMap.ShowDoneTasks):
				if m.taskFilter == database.DoneTasksFilter {
					m.taskFilter = database.AllTasksFilter
				} else {
					m.taskFilter = database.DoneTasksFilter
				}
				m.loadTasks()

			case key.Matches(msg, m.keyMap.ShowOpenTasks):
				if m.taskFilter == database.OpenTasksFilter {
					m.taskFilter = database.AllTasksFilter
				} else {
					m.taskFilter = database.OpenTasksFilter
				}
				m.loadTasks()

			case key.Matches(msg, m.keyMap.SearchTasks):
				m.mode = SearchMode
				m.searchInput.Focus()
				m.searchInput.SetValue("")
				return m, nil

			case key.Matches(msg, m.keyMap.ToggleSortBy):
				m.sortBy = (m.sortBy + 1) % sortByCount
				m.loadTasks()

			case key.Matches(msg, m.keyMap.ToggleGroupBy):
				m.groupBy = (m.groupBy + 1) % groupByCount
				m.loadTasks()

			case key.Matches(msg, m.keyMap.ToggleSortOrder):
				if m.sortOrder == SortAsc {
					m.sortOrder = SortDesc
				} else {
					m.sortOrder = SortAsc
				}
				m.loadTasks()

			case key.Matches(msg, m.keyMap.Logout):
				m.logout("Logged out")
				return m, nil

			default:
				handled = false
			}

		case AddMode, EditMode, LoginMode:
			switch msg.String() {
			case "esc":
				if m.mode == LoginMode {
					return m, tea.Quit
				}
				m.mode = NormalMode
				m.resetInputs()
				m.editingItem = nil
				m.viewState = tasks.Viewing
				return m, nil

			case "tab", "down":
				m.focusNextInput()
				return m, nil

			case "shift+tab", "up":
				m.focusPreviousInput()
				return m, nil

			case "enter":
				// Submit on enter from the last field
				if m.activeInput == len(m.formInputs())-1 {
					cmd = m.submitForm()
					return m, cmd
				}
				m.focusNextInput()
				return m, nil
			}

			// Handle input updates
			in := m.formInputs()[m.activeInput]
			*in, cmd = in.Update(msg)
			cmds = append(cmds, cmd)

		case SearchMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.searchTerm = ""
				m.loadTasks()
				return m, nil

			case "enter":
				m.searchTerm = m.searchInput.Value()
				zap.L().Debug("searching", zap.String("term", m.searchTerm))
				m.mode = NormalMode
				m.loadTasks()
				return m, nil
			}

			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.editingItem != nil {
					zap.L().Debug("deleting task", zap.String("id", string(m.editingItem.ID)))
					m.busy[m.editingItem.ID] = true
					cmds = append(cmds, m.deleteCmd(m.editingItem.ID))
					m.refreshRows()
				}
				m.mode = NormalMode
				m.editingItem = nil

			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingItem = nil
			}

		case HelpViewMode:
			switch {
			case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(msg.Height - 6)
		m.table.SetColumns([]table.Column{{Title: "", Width: msg.Width - 6}})
	}

	// Only update table in normal mode
	if m.mode == NormalMode && !handled {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTasksLoaded(msg tasksLoadedMsg) {
	if msg.err != nil {
		if m.handleAPIError(msg.err) {
			return
		}
		// keep showing the cache
		m.offline = true
		zap.L().Warn("refresh failed, showing cached tasks", zap.Error(msg.err))
		return
	}

	m.offline = false
	m.err = nil
	if err := database.ReplaceTasks(m.db, msg.items); err != nil {
		m.err = err
		return
	}
	m.status = fmt.Sprintf("%d tasks", len(msg.items))
	m.reportIntegrity(msg.items)
	m.loadTasks()
}

func (m *Model) handleLoggedIn(msg loggedInMsg) tea.Cmd {
	if msg.err != nil {
		m.err = msg.err
		m.passwordInput.Reset()
		return nil
	}
	if err := m.session.Login(msg.token, msg.username, m.now()); err != nil {
		m.err = err
		return nil
	}

	m.err = nil
	m.mode = NormalMode
	m.status = fmt.Sprintf("Logged in as %s", msg.username)
	return m.refreshCmd()
}

// handleAPIError records err and reports whether there was one. An
// unauthorized answer ends the session.
func (m *Model) handleAPIError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, session.ErrNotLoggedIn) {
		m.logout("Session expired, please log in again")
		return true
	}
	m.err = err
	return true
}

// completeSelected toggles a one-off task or completes a recurring task
// for today, when the reconciler allows it
func (m *Model) completeSelected() tea.Cmd {
	task := m.selectedTask()
	if task == nil {
		return nil
	}
	if m.busy[task.ID] {
		m.status = "Waiting for the server…"
		return nil
	}

	var cmd tea.Cmd
	switch {
	case task.Frequency == tasks.OneOff && task.Completed:
		cmd = m.toggleCmd(task.ID, false)
	case !tasks.CanComplete(*task, m.today()):
		m.status = m.loc.Text("not_completable", nil)
		return nil
	case task.Frequency == tasks.OneOff:
		cmd = m.toggleCmd(task.ID, true)
	default:
		cmd = m.completeCmd(task.ID)
	}

	m.busy[task.ID] = true
	m.refreshRows()
	return cmd
}

func (m *Model) startEdit() {
	task := m.selectedTask()
	if task == nil {
		return
	}
	if m.busy[task.ID] {
		m.status = "Waiting for the server…"
		return
	}

	state := tasks.StartEditing(*task)
	if !state.Editing {
		m.status = m.loc.Text("not_editable", nil)
		return
	}

	item := *task
	m.editingItem = &item
	m.viewState = state
	m.mode = EditMode
	m.err = nil
	m.resetInputs()
	m.titleInput.SetValue(state.DraftTitle)
	m.descInput.SetValue(state.DraftDescription)
}

// updateCached applies change to the cached copy of task id and redraws
func (m *Model) updateCached(id tasks.ID, change func(tasks.Task) tasks.Task) {
	task, err := database.GetTask(m.db, id)
	if err != nil {
		m.err = fmt.Errorf("task %s missing from cache: %w", id, err)
		m.refreshRows()
		return
	}
	task = change(task)
	if err := database.UpsertTask(m.db, task); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.reportIntegrity([]tasks.Task{task})
	m.loadTasks()
}

func (m *Model) reportIntegrity(list []tasks.Task) {
	count := 0
	for _, task := range list {
		if len(tasks.CheckIntegrity(task)) > 0 {
			count++
		}
	}
	if count > 0 {
		m.status = fmt.Sprintf("%s (%d with inconsistent data, see log)", m.status, count)
	}
}

// logout ends the session and forgets every cached task
func (m *Model) logout(status string) {
	if err := m.session.Logout(); err != nil {
		m.err = err
	}
	if err := database.ReplaceTasks(m.db, nil); err != nil {
		m.err = err
	}
	m.items = nil
	m.rowTasks = nil
	m.busy = map[tasks.ID]bool{}
	m.table.SetRows(nil)
	m.status = status
	m.enterLoginMode()
}
