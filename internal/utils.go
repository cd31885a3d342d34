package internal

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Version is the glossmd release version
const Version = "0.1.0"

// TranslatedFilename derives the file name of a translation from its source
// document, e.g. ("docs/models.md", "ko") -> "models_ko.md"
func TranslatedFilename(source, suffix string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".md"
	}

	suffix = SanitizeFilename(suffix)
	if suffix == "" {
		return stem + ext
	}
	return stem + "_" + suffix + ext
}

// SanitizeFilename creates a safe filename part from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
