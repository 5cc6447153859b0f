package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, styles, err := Load("")
	require.NoError(t, err)

	dir := filepath.Join(home, ".config", "taskflow")
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "sqlite3", cfg.Cache.Driver)
	assert.Equal(t, filepath.Join(dir, "tasks.db"), cfg.Cache.DSN)
	assert.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionFile)
	assert.Equal(t, DefaultStyles(), styles)
	assert.NotEmpty(t, cfg.KeyMap)

	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.FileExists(t, filepath.Join(dir, "styles.json"))
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "custom.json")
	content := `{
		"api_url": "https://tasks.example.com",
		"timeout": "3s",
		"session_file": "~/token.json",
		"cache": {"driver": "postgres", "dsn": "postgres://localhost/taskflow"},
		"keymap": {"AddTask": "n"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("TASKFLOW_LANGUAGE", "fr")

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "postgres", cfg.Cache.Driver)
	assert.Equal(t, "postgres://localhost/taskflow", cfg.Cache.DSN)
	assert.Equal(t, filepath.Join(home, "token.json"), cfg.SessionFile)
	assert.Equal(t, "n", cfg.KeyMap["addtask"])
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": "0s"}`), 0644))

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestLoadStyles_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accent_color": "99"}`), 0644))

	styles, err := loadStyles(path)
	require.NoError(t, err)
	assert.Equal(t, "99", styles.AccentColor)
	assert.Equal(t, DefaultStyles().BorderColor, styles.BorderColor)
}
