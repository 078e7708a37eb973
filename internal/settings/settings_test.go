package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"viaggi/internal/i18n"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "settings.json"))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := testStore(t)

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Language != i18n.DefaultLocale {
		t.Errorf("Language = %q, want default", got.Language)
	}
	if got.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want default", got.Theme)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	want := Settings{Language: i18n.LocaleItalian, Theme: ThemeDark}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSaveRejectsInvalidTheme(t *testing.T) {
	s := testStore(t)

	err := s.Save(Settings{Language: i18n.LocaleEnglish, Theme: Theme("sepia")})
	if !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("err = %v, want ErrInvalidTheme", err)
	}
}

func TestSaveNormalizesLanguage(t *testing.T) {
	s := testStore(t)

	if err := s.Save(Settings{Language: i18n.Locale("it_IT"), Theme: ThemeLight}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Language != i18n.LocaleItalian {
		t.Errorf("Language = %q, want %q", got.Language, i18n.LocaleItalian)
	}
}

func TestLoadNormalizesUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"language":"xx","theme":"sepia"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Language != i18n.DefaultLocale || got.Theme != DefaultTheme {
		t.Errorf("Load = %+v, want normalized defaults", got)
	}
}

func TestUpdate(t *testing.T) {
	s := testStore(t)

	got, err := s.Update(func(cur Settings) Settings {
		cur.Theme = ThemeDark
		return cur
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Theme != ThemeDark {
		t.Errorf("Theme = %q, want dark", got.Theme)
	}

	persisted, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if persisted.Theme != ThemeDark {
		t.Errorf("persisted theme = %q, want dark", persisted.Theme)
	}
}
