package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/pkg/api"
	"taskflow/pkg/tasks"
)

// Messages delivered when an API call returns

type tasksLoadedMsg struct {
	items []tasks.Task
	err   error
}

type loggedInMsg struct {
	token    string
	username string
	err      error
}

type taskCreatedMsg struct {
	task tasks.Task
	err  error
}

type taskEditedMsg struct {
	id   tasks.ID
	task tasks.Task
	err  error
}

type taskToggledMsg struct {
	id        tasks.ID
	completed bool
	err       error
}

type taskCompletedMsg struct {
	id     tasks.ID
	result tasks.CompletionResult
	err    error
}

type taskDeletedMsg struct {
	id  tasks.ID
	err error
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.config.Timeout)
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		items, err := m.service.ListTasks(ctx)
		return tasksLoadedMsg{items: items, err: err}
	}
}

func (m Model) loginCmd(creds api.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		token, err := m.service.Login(ctx, creds)
		return loggedInMsg{token: token, username: creds.Username, err: err}
	}
}

func (m Model) createCmd(n tasks.NewTask, today tasks.Date) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		task, err := m.service.CreateTask(ctx, n, today)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m Model) editCmd(id tasks.ID, edit tasks.Edit) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		task, err := m.service.EditTask(ctx, id, edit)
		return taskEditedMsg{id: id, task: task, err: err}
	}
}

func (m Model) toggleCmd(id tasks.ID, completed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		got, err := m.service.SetCompleted(ctx, id, completed)
		return taskToggledMsg{id: id, completed: got, err: err}
	}
}

func (m Model) completeCmd(id tasks.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		result, err := m.service.CompleteTask(ctx, id)
		return taskCompletedMsg{id: id, result: result, err: err}
	}
}

func (m Model) deleteCmd(id tasks.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return taskDeletedMsg{id: id, err: m.service.DeleteTask(ctx, id)}
	}
}
