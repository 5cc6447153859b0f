package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"taskflow/pkg/keymaps"
)

// EnvPrefix prefixes every environment override, e.g. TASKFLOW_API_URL
const EnvPrefix = "TASKFLOW"

// Config holds the application configuration
type Config struct {
	APIURL      string            `mapstructure:"api_url"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Language    string            `mapstructure:"language"`
	Cache       CacheConfig       `mapstructure:"cache"`
	SessionFile string            `mapstructure:"session_file"`
	KeyMap      map[string]string `mapstructure:"keymap"`
	StylesFile  string            `mapstructure:"styles_file"`
}

// CacheConfig selects the local task cache backend
type CacheConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

// Styles holds the application colors
type Styles struct {
	BorderColor       string `mapstructure:"border_color"`
	AccentColor       string `mapstructure:"accent_color"`
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`
	WarningColor      string `mapstructure:"warning_color"`

	// Due message colors
	DueTodayColor  string `mapstructure:"due_today_color"`
	ScheduledColor string `mapstructure:"scheduled_color"`
	CompletedColor string `mapstructure:"completed_color"`
}

// Dir returns the directory holding config, styles, session and cache
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "taskflow"), nil
}

// Load loads the configuration from configPath, or from the default
// location when configPath is empty. A missing file is created with the
// defaults. Environment variables and a .env file in the working directory
// override file values.
func Load(configPath string) (Config, Styles, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, Styles{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, Styles{}, fmt.Errorf("read .env: %w", err)
	}

	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	setDefaults(v, configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, Styles{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, Styles{}, fmt.Errorf("write default config: %w", err)
		}
	} else if err := v.ReadInConfig(); err != nil {
		return Config{}, Styles{}, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Styles{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.SessionFile = expandHome(cfg.SessionFile)
	cfg.StylesFile = expandHome(cfg.StylesFile)
	if cfg.Cache.Driver == "sqlite3" {
		cfg.Cache.DSN = expandHome(cfg.Cache.DSN)
	}
	if cfg.Timeout <= 0 {
		return cfg, Styles{}, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}

	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return cfg, styles, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("api_url", "http://localhost:5000")
	v.SetDefault("timeout", "10s")
	v.SetDefault("language", "en")
	v.SetDefault("cache.driver", "sqlite3")
	v.SetDefault("cache.dsn", filepath.Join(configDir, "tasks.db"))
	v.SetDefault("session_file", filepath.Join(configDir, "session.json"))
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))
}

// DefaultStyles is the palette written on first run
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		WarningColor:      "214",
		DueTodayColor:     "11",
		ScheduledColor:    "4",
		CompletedColor:    "2",
	}
}

// loadStyles loads the styles file, creating it with the defaults if missing
func loadStyles(stylesPath string) (Styles, error) {
	defaults := DefaultStyles()

	v := viper.New()
	v.SetConfigFile(stylesPath)
	v.SetConfigType("json")
	v.SetDefault("border_color", defaults.BorderColor)
	v.SetDefault("accent_color", defaults.AccentColor)
	v.SetDefault("normal_text_color", defaults.NormalTextColor)
	v.SetDefault("selected_text_color", defaults.SelectedTextColor)
	v.SetDefault("selected_bg_color", defaults.SelectedBgColor)
	v.SetDefault("error_color", defaults.ErrorColor)
	v.SetDefault("warning_color", defaults.WarningColor)
	v.SetDefault("due_today_color", defaults.DueTodayColor)
	v.SetDefault("scheduled_color", defaults.ScheduledColor)
	v.SetDefault("completed_color", defaults.CompletedColor)

	if _, err := os.Stat(stylesPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0755); err != nil {
			return defaults, err
		}
		if err := v.WriteConfigAs(stylesPath); err != nil {
			return defaults, err
		}
		return defaults, nil
	}

	if err := v.ReadInConfig(); err != nil {
		return defaults, err
	}

	var loaded Styles
	if err := v.Unmarshal(&loaded); err != nil {
		return defaults, err
	}
	return loaded, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return homeDir + path[1:]
}
