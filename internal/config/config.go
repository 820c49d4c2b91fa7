package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/agilitext/internal/logging"
)

// AppName names the config directory.
const AppName = "agilitext"

// Config holds every agilitext setting.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Editor EditorConfig `mapstructure:"editor"`
	Files  FilesConfig  `mapstructure:"files"`
	Prefs  PrefsConfig  `mapstructure:"prefs"`
	Script ScriptConfig `mapstructure:"script"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn or error
	File  string `mapstructure:"file"`  // empty logs to stderr
}

// EditorConfig configures the document session.
type EditorConfig struct {
	MaxUndo    int    `mapstructure:"max_undo"` // 0 is unbounded
	DateFormat string `mapstructure:"date_format"`
	TimeFormat string `mapstructure:"time_format"`
}

// FilesConfig configures loading, saving and watching.
type FilesConfig struct {
	AtomicSave          bool          `mapstructure:"atomic_save"`
	PreserveLineEndings bool          `mapstructure:"preserve_line_endings"`
	Watch               bool          `mapstructure:"watch"`
	WatchDebounce       time.Duration `mapstructure:"watch_debounce"`
}

// PrefsConfig locates the preferences file.
type PrefsConfig struct {
	Path string `mapstructure:"path"` // empty uses DefaultPrefsPath
}

// ScriptConfig configures Lua scripting.
type ScriptConfig struct {
	InstructionLimit int `mapstructure:"instruction_limit"` // 0 is unlimited
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Editor: EditorConfig{
			MaxUndo:    0,
			DateFormat: "02/01/2006",
			TimeFormat: "03:04:05",
		},
		Files: FilesConfig{
			AtomicSave:          false,
			PreserveLineEndings: false,
			Watch:               true,
			WatchDebounce:       100 * time.Millisecond,
		},
		Script: ScriptConfig{
			InstructionLimit: 1_000_000,
		},
	}
}

// defaultValues flattens Defaults into the document written by WriteDefault.
func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"log": map[string]any{
			"level": d.Log.Level,
			"file":  d.Log.File,
		},
		"editor": map[string]any{
			"max_undo":    d.Editor.MaxUndo,
			"date_format": d.Editor.DateFormat,
			"time_format": d.Editor.TimeFormat,
		},
		"files": map[string]any{
			"atomic_save":           d.Files.AtomicSave,
			"preserve_line_endings": d.Files.PreserveLineEndings,
			"watch":                 d.Files.Watch,
			"watch_debounce":        d.Files.WatchDebounce.String(),
		},
		"prefs": map[string]any{
			"path": d.Prefs.Path,
		},
		"script": map[string]any{
			"instruction_limit": d.Script.InstructionLimit,
		},
	}
}

// Validate checks every setting and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	fail := func(key, msg string) {
		errs = append(errs, &ValidationError{Key: key, Message: msg})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		fail("log.level", err.Error())
	}
	if c.Editor.MaxUndo < 0 {
		fail("editor.max_undo", "must not be negative")
	}
	if c.Editor.DateFormat == "" {
		fail("editor.date_format", "must not be empty")
	}
	if c.Editor.TimeFormat == "" {
		fail("editor.time_format", "must not be empty")
	}
	if c.Files.WatchDebounce < 0 {
		fail("files.watch_debounce", "must not be negative")
	}
	if c.Script.InstructionLimit < 0 {
		fail("script.instruction_limit", "must not be negative")
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level, info when invalid.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// PrefsPath returns the preferences file, falling back to DefaultPrefsPath.
func (c *Config) PrefsPath() string {
	if c.Prefs.Path != "" {
		return c.Prefs.Path
	}
	return DefaultPrefsPath()
}

// Dir returns the user config directory for agilitext.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultSearchPaths returns the directories searched for config.toml.
func DefaultSearchPaths() []string {
	paths := []string{Dir()}
	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", AppName)
		if fallback != paths[0] {
			paths = append(paths, fallback)
		}
	}
	return paths
}

// DefaultPrefsPath returns the default preferences file.
func DefaultPrefsPath() string {
	return filepath.Join(Dir(), "prefs.yaml")
}
