// Package prefs persists per-user state between runs: how many times the
// program has been started, the last font, and unsaved text left over from
// the previous session.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Prefs is the persisted preference set.
type Prefs struct {
	RunCount int     `yaml:"run_count"`
	FontName string  `yaml:"font_name,omitempty"`
	FontSize float64 `yaml:"font_size"`

	// LastText is unsaved text to restore on the next start. Nil when none.
	LastText *string `yaml:"last_text,omitempty"`
}

// Defaults returns the preferences of a first run.
func Defaults() Prefs {
	return Prefs{
		RunCount: 1,
		FontSize: -1,
	}
}

// FirstRun reports whether this is the first start.
func (p *Prefs) FirstRun() bool {
	return p.RunCount <= 1
}

// IncrementRunCount records another start.
func (p *Prefs) IncrementRunCount() {
	p.RunCount++
}

// SetLastText stores text to restore next time. Blank text clears it.
func (p *Prefs) SetLastText(text string) {
	if strings.TrimSpace(text) == "" {
		p.LastText = nil
		return
	}
	p.LastText = &text
}

// SetFont remembers the last font.
func (p *Prefs) SetFont(name string, size float64) {
	p.FontName = name
	p.FontSize = size
}

// HasFont reports whether a font was remembered.
func (p *Prefs) HasFont() bool {
	return p.FontName != "" && p.FontSize > 0
}

// Store reads and writes Prefs as YAML.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a store for the file at path. A nil fs means the OS filesystem.
func NewStore(fs afero.Fs, path string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: path}
}

// Path returns the preferences file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences. A missing file yields Defaults.
// Keys absent from the file keep their defaults.
func (s *Store) Load() (*Prefs, error) {
	p := Defaults()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &p, nil
		}
		return nil, fmt.Errorf("reading prefs: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing prefs %s: %w", s.path, err)
	}
	return &p, nil
}

// Save writes the preferences, creating the parent directory.
func (s *Store) Save(p *Prefs) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(p); err != nil {
		return fmt.Errorf("marshaling prefs: %w", err)
	}
	_ = encoder.Close()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating prefs directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}
