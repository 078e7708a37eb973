package i18n

import "testing"

func TestT(t *testing.T) {
	tests := []struct {
		name   string
		locale Locale
		key    string
		want   string
	}{
		{"english category", LocaleEnglish, "category.meal", "Meals"},
		{"italian category", LocaleItalian, "category.meal", "Pasti"},
		{"italian settlement", LocaleItalian, "settlement.return", "Da restituire"},
		{"missing key returns verbatim", LocaleEnglish, "category.unknown", "category.unknown"},
		{"missing key italian returns verbatim", LocaleItalian, "no.such.key", "no.such.key"},
		{"unknown locale falls back to english", Locale("de"), "category.meal", "Meals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := T(tt.locale, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"en", LocaleEnglish},
		{"IT", LocaleItalian},
		{"en-US", LocaleEnglish},
		{"it_IT", LocaleItalian},
		{"fr", LocaleEnglish},
		{"", LocaleEnglish},
	}

	for _, tt := range tests {
		if got := ParseLocale(tt.in); got != tt.want {
			t.Errorf("ParseLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
