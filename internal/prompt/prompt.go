// Package prompt merges a base instruction template with glossary rules.
package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/glossary"
)

// Substitution markers recognised in template files.
const (
	GlossaryMarker = "{glossary_instructions}"
	SourceMarker   = "{source}"
)

// Template is a composed prompt that still carries the source marker.
type Template struct {
	text string
}

// LoadTemplate reads a base prompt template from disk.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &apperr.NotFoundError{Path: path}
		}
		return "", &apperr.IOError{Op: "read template", Path: path, Err: err}
	}
	base := string(data)
	if !strings.Contains(base, SourceMarker) {
		return "", &apperr.ParseError{Path: path, Detail: "template has no " + SourceMarker + " marker"}
	}
	return base, nil
}

// Compose substitutes the glossary rules into base.
func Compose(base string, entries []glossary.Entry) Template {
	return Template{text: strings.ReplaceAll(base, GlossaryMarker, Instructions(entries))}
}

// Instructions renders one rule line per glossary entry.
func Instructions(entries []glossary.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s → %s", quote(e.Source), renderTarget(e.Target)))
	}
	return strings.Join(lines, "\n")
}

// Render returns the final prompt for one chunk.
func (t Template) Render(source string) string {
	return strings.ReplaceAll(t.text, SourceMarker, source)
}

// String returns the composed template text.
func (t Template) String() string {
	return t.text
}

func renderTarget(targets []string) string {
	if len(targets) == 1 {
		return quote(targets[0])
	}
	quoted := make([]string, len(targets))
	for i, tgt := range targets {
		quoted[i] = quote(tgt)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// quote renders s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
