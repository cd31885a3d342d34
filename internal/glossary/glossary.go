package glossary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/glossmd/internal/apperr"
)

// Entry maps one source term to its accepted translations.
type Entry struct {
	Source string  `json:"source" yaml:"source"`
	Target Targets `json:"target" yaml:"target"`
}

// Targets is an ordered list of accepted translations. In glossary files it
// may be written either as a single string or as a list of strings.
type Targets []string

// UnmarshalJSON accepts "x" as well as ["x", "y"].
func (t *Targets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Targets{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("target must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// UnmarshalYAML accepts a scalar as well as a sequence.
func (t *Targets) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = Targets{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil
	default:
		return fmt.Errorf("line %d: target must be a string or a list of strings", value.Line)
	}
}

// Load reads and validates a glossary file. YAML is used for .yaml and .yml
// files, JSON for everything else.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.NotFoundError{Path: path}
		}
		return nil, &apperr.IOError{Op: "read glossary", Path: path, Err: err}
	}

	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, &apperr.ParseError{Path: path, Detail: "malformed glossary", Err: err}
	}

	normalized, err := Normalize(entries)
	if err != nil {
		return nil, &apperr.ParseError{Path: path, Detail: err.Error()}
	}
	return normalized, nil
}

// Normalize trims terms, drops blank targets and enforces the glossary
// invariants: non-empty unique sources and at least one target each.
func Normalize(entries []Entry) ([]Entry, error) {
	seen := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))

	for i, e := range entries {
		source := strings.TrimSpace(e.Source)
		if source == "" {
			return nil, fmt.Errorf("record %d: empty source term", i+1)
		}
		if prev, dup := seen[source]; dup {
			return nil, fmt.Errorf("record %d: duplicate source term %q (first seen in record %d)", i+1, source, prev+1)
		}
		seen[source] = i

		var targets Targets
		for _, tgt := range e.Target {
			if tgt = strings.TrimSpace(tgt); tgt != "" {
				targets = append(targets, tgt)
			}
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("record %d: source term %q has no target", i+1, source)
		}

		out = append(out, Entry{Source: source, Target: targets})
	}

	return out, nil
}

// SourceTerms returns the source term of every entry, in glossary order.
func SourceTerms(entries []Entry) []string {
	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.Source)
	}
	return terms
}

// TargetTerms returns every accepted translation, in glossary order.
func TargetTerms(entries []Entry) []string {
	var terms []string
	for _, e := range entries {
		terms = append(terms, e.Target...)
	}
	return terms
}
