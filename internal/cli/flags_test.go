package cli

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", flags.LogLevel, "warn"},
		{"LogFormat", flags.LogFormat, "console"},
		{"Provider", flags.Provider, "openai"},
		{"Model", flags.Model, "gpt-4o"},
		{"Temperature", flags.Temperature, 0.1},
		{"Timeout", flags.Timeout, 5 * time.Minute},
		{"Stream", flags.Stream, true},
		{"Source", flags.Source, "./source_docs/models.md"},
		{"Prompt", flags.Prompt, "./prompts/nmt.yaml"},
		{"Glossary", flags.Glossary, "./glossary/glossary.json"},
		{"Output", flags.Output, "./output/models_ko.md"},
		{"Suffix", flags.Suffix, "ko"},
		{"Highlight", flags.Highlight, "ansi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"NoCache", flags.NoCache},
		{"NoReview", flags.NoReview},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"BaseURL", flags.BaseURL},
		{"FallbackProvider", flags.FallbackProvider},
		{"FallbackModel", flags.FallbackModel},
		{"BatchFile", flags.BatchFile},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %q, want empty", tt.name, tt.value)
			}
		})
	}

	if !strings.HasSuffix(flags.CachePath, "memory.db") {
		t.Errorf("CachePath = %q, want a memory.db file", flags.CachePath)
	}
}
