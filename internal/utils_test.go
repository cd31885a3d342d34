package internal

import "testing"

func TestTranslatedFilename(t *testing.T) {
	tests := []struct {
		source string
		suffix string
		want   string
	}{
		{"./source_docs/models.md", "ko", "models_ko.md"},
		{"README", "ko", "README_ko.md"},
		{"guide.markdown", "pt-BR", "guide_pt-BR.markdown"},
		{"notes.md", "", "notes.md"},
		{"a.b.md", "ja", "a.b_ja.md"},
	}

	for _, tt := range tests {
		if got := TranslatedFilename(tt.source, tt.suffix); got != tt.want {
			t.Errorf("TranslatedFilename(%q, %q) = %q, want %q", tt.source, tt.suffix, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ko", "ko"},
		{"zh hans", "zh_hans"},
		{"한국어", "한국어"},
		{"../etc", "___etc"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
