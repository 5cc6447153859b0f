package keymaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKeyMap_Defaults(t *testing.T) {
	km := BuildKeyMap(nil)

	assert.Equal(t, []string{"a"}, km.AddTask.Keys())
	assert.Equal(t, []string{"ctrl+f", "/"}, km.SearchTasks.Keys())
	assert.Equal(t, "ctrl+f", km.SearchTasks.Help().Key)
	assert.Equal(t, "add task", km.AddTask.Help().Desc)
}

func TestBuildKeyMap_OverridesIgnoreCase(t *testing.T) {
	km := BuildKeyMap(map[string]string{
		"addtask":  "n, ctrl+n",
		"QuitApp":  "ctrl+q",
		"EditTask": "",
	})

	assert.Equal(t, []string{"n", "ctrl+n"}, km.AddTask.Keys())
	assert.Equal(t, []string{"ctrl+q"}, km.QuitApp.Keys())
	assert.Equal(t, []string{"e"}, km.EditTask.Keys(), "empty override keeps the default")
}

func TestGetDefaultKeyMappings_CoversEveryAction(t *testing.T) {
	mappings := GetDefaultKeyMappings()
	assert.Len(t, mappings, len(KeyDefinitions))
	assert.Equal(t, "space", mappings["CompleteTask"])
}

func TestBuildKeyMap_SpaceMatchesLiteralSpace(t *testing.T) {
	km := BuildKeyMap(nil)

	assert.Equal(t, []string{" "}, km.CompleteTask.Keys())
	assert.Equal(t, "space", km.CompleteTask.Help().Key)
}
