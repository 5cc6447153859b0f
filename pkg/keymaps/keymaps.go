package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":        {"ctrl+b", "show/hide commands"},
	"QuitApp":         {"q", "quit"},
	"CompleteTask":    {"space", "complete task (toggle one-off, complete recurring for today)"},
	"AddTask":         {"a", "add task"},
	"EditTask":        {"e", "edit task"},
	"DeleteTask":      {"d", "delete task"},
	"Refresh":         {"r", "reload tasks from the server"},
	"ToggleDueToday":  {"ctrl+t", "toggle between all tasks and tasks due today"},
	"ShowDoneTasks":   {"ctrl+d", "show only done tasks"},
	"ShowOpenTasks":   {"ctrl+u", "show only open tasks"},
	"SearchTasks":     {"ctrl+f,/", "search tasks"},
	"Logout":          {"ctrl+l", "log out"},
	"ToggleSortBy":    {"s", "cycle sort by"},
	"ToggleGroupBy":   {"g", "cycle group by"},
	"ToggleSortOrder": {"o", "toggle sort order"},
}

type KeyMap struct {
	ShowHelp        key.Binding
	QuitApp         key.Binding
	CompleteTask    key.Binding
	AddTask         key.Binding
	EditTask        key.Binding
	DeleteTask      key.Binding
	Refresh         key.Binding
	ToggleDueToday  key.Binding
	ShowDoneTasks   key.Binding
	ShowOpenTasks   key.Binding
	SearchTasks     key.Binding
	Logout          key.Binding
	ToggleSortBy    key.Binding
	ToggleGroupBy   key.Binding
	ToggleSortOrder key.Binding
}

// BuildKeyMap applies configOverrides on top of the defaults. Override
// names are matched case-insensitively since config keys are lowercased
// when read.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keyStr := range configOverrides {
		overrides[strings.ToLower(action)] = keyStr
	}

	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)

		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "CompleteTask":
			km.CompleteTask = binding
		case "AddTask":
			km.AddTask = binding
		case "EditTask":
			km.EditTask = binding
		case "DeleteTask":
			km.DeleteTask = binding
		case "Refresh":
			km.Refresh = binding
		case "ToggleDueToday":
			km.ToggleDueToday = binding
		case "ShowDoneTasks":
			km.ShowDoneTasks = binding
		case "ShowOpenTasks":
			km.ShowOpenTasks = binding
		case "SearchTasks":
			km.SearchTasks = binding
		case "Logout":
			km.Logout = binding
		case "ToggleSortBy":
			km.ToggleSortBy = binding
		case "ToggleGroupBy":
			km.ToggleGroupBy = binding
		case "ToggleSortOrder":
			km.ToggleSortOrder = binding
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	names := strings.Split(keyStr, ",")
	keys := make([]string, len(names))
	for i, k := range names {
		names[i] = strings.TrimSpace(k)
		keys[i] = names[i]
		// the space bar arrives as a literal space
		if keys[i] == "space" {
			keys[i] = " "
		}
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(names[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
