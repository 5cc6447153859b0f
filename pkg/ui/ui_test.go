package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/api"
	"taskflow/pkg/config"
	"taskflow/pkg/database"
	"taskflow/pkg/session"
	"taskflow/pkg/tasks"
	"taskflow/pkg/translator"
)

func TestMain(m *testing.M) {
	if err := translator.InitTranslator(); err != nil {
		panic(err)
	}
	m.Run()
}

var (
	testNow   = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)
	testToday = tasks.MustParseDate("2024-03-10")
	tomorrow  = tasks.MustParseDate("2024-03-11")
)

type mockService struct {
	mock.Mock
}

func (s *mockService) Login(_ context.Context, creds api.Credentials) (string, error) {
	args := s.Called(creds)
	return args.String(0), args.Error(1)
}

func (s *mockService) ListTasks(_ context.Context) ([]tasks.Task, error) {
	args := s.Called()
	list, _ := args.Get(0).([]tasks.Task)
	return list, args.Error(1)
}

func (s *mockService) CreateTask(_ context.Context, n tasks.NewTask, today tasks.Date) (tasks.Task, error) {
	args := s.Called(n, today)
	return args.Get(0).(tasks.Task), args.Error(1)
}

func (s *mockService) EditTask(_ context.Context, id tasks.ID, edit tasks.Edit) (tasks.Task, error) {
	args := s.Called(id, edit)
	return args.Get(0).(tasks.Task), args.Error(1)
}

func (s *mockService) SetCompleted(_ context.Context, id tasks.ID, completed bool) (bool, error) {
	args := s.Called(id, completed)
	return args.Bool(0), args.Error(1)
}

func (s *mockService) CompleteTask(_ context.Context, id tasks.ID) (tasks.CompletionResult, error) {
	args := s.Called(id)
	return args.Get(0).(tasks.CompletionResult), args.Error(1)
}

func (s *mockService) DeleteTask(_ context.Context, id tasks.ID) error {
	return s.Called(id).Error(0)
}

type fixture struct {
	svc     *mockService
	session *session.Session
	deps    Deps
}

func newFixture(t *testing.T, loggedIn bool, seed ...tasks.Task) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := database.ConnectDB(database.DriverSQLite, filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(db))
	require.NoError(t, database.ReplaceTasks(db, seed))

	sess, err := session.Load(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	if loggedIn {
		require.NoError(t, sess.Login("tok", "ada", testNow))
	}

	svc := &mockService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	return &fixture{
		svc:     svc,
		session: sess,
		deps: Deps{
			Service: svc,
			Session: sess,
			DB:      db,
			Config:  config.Config{APIURL: "http://localhost:5000", Timeout: time.Second, Language: translator.LanguageEn},
			Styles:  config.DefaultStyles(),
			Now:     func() time.Time { return testNow },
		},
	}
}

// run executes cmd and feeds every message of ours back into the model
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
	case tasksLoadedMsg, loggedInMsg, taskCreatedMsg, taskEditedMsg, taskToggledMsg, taskCompletedMsg, taskDeletedMsg:
		next, nextCmd := m.Update(msg)
		m = run(t, next.(Model), nextCmd)
	}
	return m
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+t":
		msg = tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+l":
		msg = tea.KeyMsg{Type: tea.KeyCtrlL}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func pressAndRun(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := press(m, k)
	return run(t, m, cmd)
}

func cached(t *testing.T, f *fixture, id tasks.ID) tasks.Task {
	t.Helper()
	task, err := database.GetTask(f.deps.DB, id)
	require.NoError(t, err)
	return task
}

func dailyDue(id string, due tasks.Date) tasks.Task {
	return tasks.Task{ID: tasks.ID(id), Title: "Water plants", Frequency: tasks.Daily, StartDate: testToday.AddDays(-5).Ptr(), DoNextBy: due.Ptr()}
}

func oneOff(id string, completed bool) tasks.Task {
	return tasks.Task{ID: tasks.ID(id), Title: "File taxes", Description: "before april", Frequency: tasks.OneOff, StartDate: testToday.Ptr(), Completed: completed, DoNextBy: testToday.Ptr()}
}

func TestNewModel_LoggedOutStartsInLoginMode(t *testing.T) {
	f := newFixture(t, false)
	m := NewModel(f.deps)

	assert.Equal(t, LoginMode, m.mode)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "Log in")
}

func TestLogin_StoresSessionAndRefreshes(t *testing.T) {
	f := newFixture(t, false)
	f.svc.On("Login", api.Credentials{Username: "ada", Password: "pw"}).Return("tok-1", nil)
	f.svc.On("ListTasks").Return([]tasks.Task{oneOff("1", false)}, nil)

	m := NewModel(f.deps)
	m.usernameInput.SetValue(" ada ")
	m, _ = press(m, "tab")
	m.passwordInput.SetValue("pw")
	m = pressAndRun(t, m, "enter")

	assert.Equal(t, NormalMode, m.mode)
	assert.True(t, f.session.LoggedIn())
	assert.Equal(t, "ada", f.session.Username())
	require.Len(t, m.items, 1)
	assert.Contains(t, m.View(), "File taxes")
}

func TestLogin_FailureStaysInLoginMode(t *testing.T) {
	f := newFixture(t, false)
	f.svc.On("Login", mock.Anything).Return("", fmt.Errorf("bad: %w", api.ErrUnauthorized))

	m := NewModel(f.deps)
	m.usernameInput.SetValue("ada")
	m.passwordInput.SetValue("wrong")
	m.activeInput = inputPassword
	m = pressAndRun(t, m, "enter")

	assert.Equal(t, LoginMode, m.mode)
	assert.Error(t, m.err)
	assert.False(t, f.session.LoggedIn())
}

func TestLogin_RequiresBothFields(t *testing.T) {
	f := newFixture(t, false)

	m := NewModel(f.deps)
	m.activeInput = inputPassword
	m, cmd := press(m, "enter")

	assert.Nil(t, cmd)
	assert.Error(t, m.err)
}

func TestRefresh_ReplacesCache(t *testing.T) {
	f := newFixture(t, true, oneOff("stale", false))
	f.svc.On("ListTasks").Return([]tasks.Task{dailyDue("7", testToday)}, nil)

	m := NewModel(f.deps)
	require.Len(t, m.items, 1, "cache shown before the first refresh")

	m = run(t, m, m.Init())

	require.Len(t, m.items, 1)
	assert.Equal(t, tasks.ID("7"), m.items[0].ID)
	assert.False(t, m.offline)
}

func TestRefresh_FailureKeepsCache(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))
	f.svc.On("ListTasks").Return(nil, errors.New("connection refused"))

	m := NewModel(f.deps)
	m = run(t, m, m.Init())

	assert.True(t, m.offline)
	assert.Len(t, m.items, 1)
	assert.Contains(t, m.View(), "offline")
}

func TestRefresh_UnauthorizedLogsOut(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))
	f.svc.On("ListTasks").Return(nil, fmt.Errorf("list: %w", api.ErrUnauthorized))

	m := NewModel(f.deps)
	m = run(t, m, m.Init())

	assert.Equal(t, LoginMode, m.mode)
	assert.False(t, f.session.LoggedIn())
	left, err := database.LoadTasks(f.deps.DB, database.AllTasksFilter, testToday, "")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestComplete_RecurringDueToday(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", testToday))
	f.svc.On("CompleteTask", tasks.ID("1")).Return(tasks.CompletionResult{
		LastCompleted: testToday.Ptr(),
		DoNextBy:      tomorrow.Ptr(),
	}, nil).Once()

	m := NewModel(f.deps)
	m, cmd := press(m, "space")
	require.NotNil(t, cmd)
	assert.True(t, m.busy["1"])

	// a second press while the request is in flight is ignored
	m, again := press(m, "space")
	assert.Nil(t, again)

	m = run(t, m, cmd)

	assert.False(t, m.busy["1"])
	task := cached(t, f, "1")
	assert.Equal(t, tomorrow, *task.DoNextBy)
	assert.Equal(t, tasks.MessageDueTomorrow, tasks.DueMessage(task, testToday).Kind)
	assert.Contains(t, m.View(), "Due tomorrow")
}

func TestComplete_NotDueShowsStatus(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", tomorrow))

	m := NewModel(f.deps)
	m, cmd := press(m, "space")

	assert.Nil(t, cmd)
	assert.Equal(t, "Only tasks due today can be completed", m.status)
	f.svc.AssertNotCalled(t, "CompleteTask", mock.Anything)
}

func TestComplete_OneOffToggles(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))
	f.svc.On("SetCompleted", tasks.ID("1"), true).Return(true, nil).Once()
	f.svc.On("SetCompleted", tasks.ID("1"), false).Return(false, nil).Once()

	m := NewModel(f.deps)
	m = pressAndRun(t, m, "space")
	assert.True(t, cached(t, f, "1").Completed)

	m = pressAndRun(t, m, "space")
	assert.False(t, cached(t, f, "1").Completed)
}

func TestComplete_ErrorClearsBusy(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", testToday))
	f.svc.On("CompleteTask", tasks.ID("1")).Return(tasks.CompletionResult{}, errors.New("boom"))

	m := NewModel(f.deps)
	m = pressAndRun(t, m, "space")

	assert.False(t, m.busy["1"])
	assert.EqualError(t, m.err, "boom")
	assert.Equal(t, testToday, *cached(t, f, "1").DoNextBy)
}

func TestEdit_CompletedTaskRefused(t *testing.T) {
	f := newFixture(t, true, oneOff("1", true))

	m := NewModel(f.deps)
	m, _ = press(m, "e")

	assert.Equal(t, NormalMode, m.mode)
	assert.Equal(t, "Completed tasks can't be edited", m.status)
}

func TestEdit_SendsTrimmedDraft(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))
	f.svc.On("EditTask", tasks.ID("1"), tasks.Edit{Title: "File taxes now", Description: "before april"}).
		Return(tasks.Task{ID: "1", Title: "File taxes now", Description: "before april"}, nil)

	m := NewModel(f.deps)
	m, _ = press(m, "e")
	require.Equal(t, EditMode, m.mode)
	assert.Equal(t, "File taxes", m.titleInput.Value())
	assert.True(t, m.viewState.Editing)

	m.titleInput.SetValue("  File taxes now ")
	m, _ = press(m, "tab")
	m = pressAndRun(t, m, "enter")

	assert.Equal(t, NormalMode, m.mode)
	assert.False(t, m.viewState.Editing)
	task := cached(t, f, "1")
	assert.Equal(t, "File taxes now", task.Title)
	assert.Equal(t, testToday, *task.DoNextBy, "schedule untouched by edits")
}

func TestEdit_EmptyTitleStaysInForm(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))

	m := NewModel(f.deps)
	m, _ = press(m, "e")
	m.titleInput.SetValue("   ")
	m.activeInput = 1
	m, cmd := press(m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, EditMode, m.mode)
	assert.ErrorIs(t, m.err, tasks.ErrValidation)
}

func TestAdd_ValidationStaysInForm(t *testing.T) {
	f := newFixture(t, true)

	m := NewModel(f.deps)
	m, _ = press(m, "a")
	require.Equal(t, AddMode, m.mode)
	assert.Equal(t, testToday.String(), m.startDateInput.Value())

	m.titleInput.SetValue("Stretch")
	m.frequencyInput.SetValue("custom")
	m.customDaysInput.SetValue("0")
	m.activeInput = inputCustomDays
	m, cmd := press(m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, AddMode, m.mode)
	assert.ErrorIs(t, m.err, tasks.ErrValidation)
}

func TestAdd_CreatesCustomTask(t *testing.T) {
	f := newFixture(t, true)
	days := 3
	want := tasks.NewTask{Title: "Stretch", Frequency: tasks.Custom, CustomFrequencyDays: &days, StartDate: tomorrow}
	f.svc.On("CreateTask", want, testToday).Return(tasks.Task{
		ID: "9", Title: "Stretch", Frequency: tasks.Custom, CustomFrequencyDays: &days,
		StartDate: tomorrow.Ptr(), DoNextBy: tomorrow.Ptr(),
	}, nil)

	m := NewModel(f.deps)
	m, _ = press(m, "a")
	m.titleInput.SetValue("Stretch")
	m.startDateInput.SetValue("2024-03-11")
	m.frequencyInput.SetValue("Custom")
	m.customDaysInput.SetValue("3")
	m.activeInput = inputCustomDays
	m = pressAndRun(t, m, "enter")

	assert.Equal(t, NormalMode, m.mode)
	require.Len(t, m.items, 1)
	assert.Equal(t, tasks.ID("9"), m.items[0].ID)
}

func TestDelete_ConfirmRemovesFromCache(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false), dailyDue("2", tomorrow))
	f.svc.On("DeleteTask", tasks.ID("1")).Return(nil)

	m := NewModel(f.deps)
	m, _ = press(m, "d")
	require.Equal(t, DeleteConfirmMode, m.mode)
	assert.Contains(t, m.View(), "File taxes")

	m = pressAndRun(t, m, "y")

	assert.Equal(t, NormalMode, m.mode)
	require.Len(t, m.items, 1)
	assert.Equal(t, tasks.ID("2"), m.items[0].ID)
}

func TestDelete_NotFoundStillRemoves(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))
	f.svc.On("DeleteTask", tasks.ID("1")).Return(fmt.Errorf("delete: %w", api.ErrNotFound))

	m := NewModel(f.deps)
	m, _ = press(m, "d")
	m = pressAndRun(t, m, "y")

	assert.NoError(t, m.err)
	assert.Empty(t, m.items)
}

func TestDelete_Cancel(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))

	m := NewModel(f.deps)
	m, _ = press(m, "d")
	m, cmd := press(m, "n")

	assert.Nil(t, cmd)
	assert.Equal(t, NormalMode, m.mode)
	assert.Len(t, m.items, 1)
}

func TestToggleDueToday_Filters(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", testToday), dailyDue("2", tomorrow))

	m := NewModel(f.deps)
	require.Len(t, m.items, 2)

	m, _ = press(m, "ctrl+t")
	require.Len(t, m.items, 1)
	assert.Equal(t, tasks.ID("1"), m.items[0].ID)
	assert.Contains(t, m.viewInfo(), "tasks due today")

	m, _ = press(m, "ctrl+t")
	assert.Len(t, m.items, 2)
}

func TestSearch_FiltersByTerm(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", testToday), oneOff("2", false))

	m := NewModel(f.deps)
	m, _ = press(m, "/")
	require.Equal(t, SearchMode, m.mode)
	m.searchInput.SetValue("taxes")
	m, _ = press(m, "enter")

	require.Len(t, m.items, 1)
	assert.Equal(t, tasks.ID("2"), m.items[0].ID)

	m, _ = press(m, "/")
	m, _ = press(m, "esc")
	assert.Len(t, m.items, 2)
}

func TestGroupBy_HeaderRowsAreNotSelectable(t *testing.T) {
	f := newFixture(t, true, dailyDue("1", testToday))

	m := NewModel(f.deps)
	m, _ = press(m, "g")
	require.Equal(t, GroupByFrequency, m.groupBy)

	assert.Equal(t, []int{-1, 0}, m.rowTasks)
	assert.Nil(t, m.selectedTask(), "cursor sits on the group header")
}

func TestGroupTasks_CustomIntervalsGetTheirOwnGroup(t *testing.T) {
	f := newFixture(t, true)
	three, ten := 3, 10
	every3 := tasks.Task{ID: "1", Title: "Stretch", Frequency: tasks.Custom, CustomFrequencyDays: &three, DoNextBy: testToday.Ptr()}
	every10 := tasks.Task{ID: "2", Title: "Descale kettle", Frequency: tasks.Custom, CustomFrequencyDays: &ten, DoNextBy: testToday.Ptr()}

	m := NewModel(f.deps)
	m.groupBy = GroupByFrequency
	groups := m.GroupTasks([]tasks.Task{every3, every10, dailyDue("3", testToday)})

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.GroupName)
	}
	assert.Equal(t, []string{"Daily", "Every 10 days", "Every 3 days"}, names)
}

func TestLogout_ClearsSessionAndCache(t *testing.T) {
	f := newFixture(t, true, oneOff("1", false))

	m := NewModel(f.deps)
	m, _ = press(m, "ctrl+l")

	assert.Equal(t, LoginMode, m.mode)
	assert.False(t, f.session.LoggedIn())
	assert.Empty(t, m.items)
}

func TestSortTasks_UndatedLast(t *testing.T) {
	undated := tasks.Task{ID: "u", Title: "a"}
	early := dailyDue("e", testToday)
	late := dailyDue("l", tomorrow)

	m := Model{sortBy: SortByDueDate}
	assert.Equal(t, []tasks.Task{early, late, undated}, m.SortTasks([]tasks.Task{undated, late, early}))

	m.sortOrder = SortDesc
	assert.Equal(t, []tasks.Task{late, early, undated}, m.SortTasks([]tasks.Task{undated, early, late}))
}

func TestParseNewTask(t *testing.T) {
	n, err := parseNewTask(" Read ", "", "", "", "7", testToday)
	require.NoError(t, err)
	assert.Equal(t, tasks.NewTask{Title: "Read", Frequency: tasks.OneOff, StartDate: testToday}, n, "interval ignored unless custom")

	_, err = parseNewTask("Read", "", "10/03/2024", "daily", "", testToday)
	assert.ErrorIs(t, err, tasks.ErrValidation)

	_, err = parseNewTask("Read", "", "", "custom", "often", testToday)
	assert.ErrorIs(t, err, tasks.ErrValidation)
}
