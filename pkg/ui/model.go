package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jmoiron/sqlx"

	"taskflow/pkg/api"
	"taskflow/pkg/config"
	"taskflow/pkg/database"
	"taskflow/pkg/keymaps"
	"taskflow/pkg/session"
	"taskflow/pkg/tasks"
	"taskflow/pkg/translator"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	LoginMode
	SearchMode   // Mode for searching tasks
	HelpViewMode // Mode for displaying help
)

// TaskService is the part of the API client the UI drives
type TaskService interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	ListTasks(ctx context.Context) ([]tasks.Task, error)
	CreateTask(ctx context.Context, n tasks.NewTask, today tasks.Date) (tasks.Task, error)
	EditTask(ctx context.Context, id tasks.ID, edit tasks.Edit) (tasks.Task, error)
	SetCompleted(ctx context.Context, id tasks.ID, completed bool) (bool, error)
	CompleteTask(ctx context.Context, id tasks.ID) (tasks.CompletionResult, error)
	DeleteTask(ctx context.Context, id tasks.ID) error
}

// add form fields in focus order
const (
	inputTitle = iota
	inputDescription
	inputStartDate
	inputFrequency
	inputCustomDays
	addInputCount
)

// login form fields in focus order
const (
	inputUsername = iota
	inputPassword
	loginInputCount
)

// Model represents the application state
type Model struct {
	table         table.Model
	items         []tasks.Task
	rowTasks      []int // table row -> index in items, -1 for headers
	service       TaskService
	session       *session.Session
	db            *sqlx.DB
	width, height int
	err           error
	status        string

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap
	loc    *translator.Localizer
	now    func() time.Time

	// View state
	taskFilter database.TaskFilter
	searchTerm string
	offline    bool

	// Form state
	mode            InputMode
	titleInput      textinput.Model
	descInput       textinput.Model
	startDateInput  textinput.Model
	frequencyInput  textinput.Model
	customDaysInput textinput.Model
	searchInput     textinput.Model
	usernameInput   textinput.Model
	passwordInput   textinput.Model
	activeInput     int

	// Edit/delete state
	editingItem *tasks.Task
	viewState   tasks.ViewState

	// Requests in flight, by task
	busy map[tasks.ID]bool

	// Sorting state
	sortBy    SortBy
	sortOrder SortOrder
	groupBy   GroupBy
}

// Deps bundles what the model needs from main
type Deps struct {
	Service TaskService
	Session *session.Session
	DB      *sqlx.DB
	Config  config.Config
	Styles  config.Styles
	Now     func() time.Time
}

// NewModel creates a new UI model with the provided configuration
func NewModel(deps Deps) Model {
	// Create an empty column - the title will be empty to avoid showing a header
	columns := []table.Column{
		{Title: "", Width: 80},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := deps.Styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(false).
		Bold(false).
		Foreground(lipgloss.NoColor{})
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		table:           t,
		service:         deps.Service,
		session:         deps.Session,
		db:              deps.DB,
		config:          deps.Config,
		styles:          styles,
		keyMap:          keymaps.BuildKeyMap(deps.Config.KeyMap),
		loc:             translator.NewLocalizer(deps.Config.Language),
		now:             now,
		mode:            NormalMode,
		titleInput:      newInput("Title", 40),
		descInput:       newInput("Description", 40),
		startDateInput:  newInput("Start date (YYYY-MM-DD)", 40),
		frequencyInput:  newInput("one-off, daily, weekly or custom", 40),
		customDaysInput: newInput("Repeat every X days", 40),
		searchInput:     newInput("Search tasks by title or description", 40),
		usernameInput:   newInput("Username", 40),
		passwordInput:   newInput("Password", 40),
		taskFilter:      database.AllTasksFilter,
		busy:            map[tasks.ID]bool{},
	}
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.EchoCharacter = '•'

	if !m.session.LoggedIn() {
		m.enterLoginMode()
	} else {
		// Show whatever the cache holds until the first refresh lands
		m.loadTasks()
	}

	return m
}

func newInput(placeholder string, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = width
	return in
}

// Init fetches the task list when a session exists
func (m Model) Init() tea.Cmd {
	if m.mode == LoginMode {
		return nil
	}
	return m.refreshCmd()
}

// today is the calendar date every reconciler call in this model uses
func (m Model) today() tasks.Date {
	return tasks.Today(m.now())
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	m.titleInput.Reset()
	m.descInput.Reset()
	m.startDateInput.SetValue(m.today().String())
	m.frequencyInput.SetValue(string(tasks.OneOff))
	m.customDaysInput.Reset()

	m.activeInput = 0
	m.focusInput(m.formInputs(), 0)
}

func (m *Model) enterLoginMode() {
	m.mode = LoginMode
	m.usernameInput.Reset()
	m.passwordInput.Reset()
	m.activeInput = inputUsername
	m.focusInput(m.formInputs(), inputUsername)
}
