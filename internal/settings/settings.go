// Package settings persists user preferences as a small JSON file. Reads
// and writes are explicit; there is no ambient global state.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"viaggi/internal/i18n"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeLight
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark:
		return true
	}
	return false
}

var ErrInvalidTheme = errors.New("invalid theme")

// Settings are the persisted user preferences.
type Settings struct {
	Language i18n.Locale `json:"language"`
	Theme    Theme       `json:"theme"`
}

func defaults() Settings {
	return Settings{
		Language: i18n.DefaultLocale,
		Theme:    DefaultTheme,
	}
}

// Store loads and saves settings at a fixed path. Concurrent updates are
// serialized; writes go through a temp file and rename.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted settings. A missing file yields the defaults;
// unknown values on disk are normalized rather than rejected.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if !out.Language.Valid() {
		out.Language = i18n.DefaultLocale
	}
	if !out.Theme.Valid() {
		out.Theme = DefaultTheme
	}
	return out, nil
}

// Save validates and persists the settings.
func (s *Store) Save(in Settings) error {
	if !in.Language.Valid() {
		in.Language = i18n.ParseLocale(string(in.Language))
	}
	if !in.Theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, in.Theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Update applies fn to the current settings and persists the result.
func (s *Store) Update(fn func(Settings) Settings) (Settings, error) {
	s.mu.Lock()
	current, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return Settings{}, err
	}

	next := fn(current)
	if err := s.Save(next); err != nil {
		return Settings{}, err
	}
	return next, nil
}
