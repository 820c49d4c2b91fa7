package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "AGILITEXT"

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFile loads exactly this file instead of searching. A missing file is
// an error.
func WithFile(path string) LoaderOption {
	return func(l *Loader) {
		l.file = path
	}
}

// WithSearchPaths replaces the directories searched for config.toml.
func WithSearchPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.searchPaths = paths
	}
}

// WithFs sets the filesystem config files are read from.
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// Loader reads configuration through viper.
type Loader struct {
	v           *viper.Viper
	fs          afero.Fs
	file        string
	searchPaths []string
}

// NewLoader creates a loader with defaults and environment overrides applied.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		v:           viper.New(),
		fs:          afero.NewOsFs(),
		searchPaths: DefaultSearchPaths(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.v.SetFs(l.fs)
	setDefaults(l.v, "", defaultValues())

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	return l
}

// setDefaults registers nested defaults under dotted keys.
func setDefaults(v *viper.Viper, prefix string, values map[string]any) {
	for k, val := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Viper exposes the underlying instance so callers can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the config file, if any, and returns the validated result.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigType("toml")
	if l.file != "" {
		exists, err := afero.Exists(l.fs, l.file)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, l.file)
		}
		l.v.SetConfigFile(l.file)
	} else {
		l.v.SetConfigName("config")
		for _, p := range l.searchPaths {
			l.v.AddConfigPath(p)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// No config file anywhere, defaults apply
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file Load read, empty when defaults were used.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load is shorthand for NewLoader(opts...).Load().
func Load(opts ...LoaderOption) (*Config, error) {
	return NewLoader(opts...).Load()
}

const defaultHeader = `# agilitext configuration
#
# Every key can be overridden with an environment variable, for example
# AGILITEXT_LOG_LEVEL=debug or AGILITEXT_FILES_ATOMIC_SAVE=true.

`

// WriteDefault writes the default configuration to path, creating parent
// directories. It never overwrites an existing file.
func WriteDefault(fs afero.Fs, path string) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("checking config: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	data, err := renderDefaults()
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// renderDefaults encodes the defaults as TOML, one table per section.
func renderDefaults() ([]byte, error) {
	values := defaultValues()
	sections := make([]string, 0, len(values))
	for k := range values {
		sections = append(sections, k)
	}
	sort.Strings(sections)

	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	for i, section := range sections {
		if i > 0 {
			buf.WriteByte('\n')
		}
		data, err := toml.Marshal(map[string]any{section: values[section]})
		if err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
