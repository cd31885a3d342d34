package cli

import (
	"os"
	"path/filepath"
	"time"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	LogLevel  string
	LogFormat string

	// Model flags
	Provider         string
	Model            string
	BaseURL          string
	Temperature      float64
	Timeout          time.Duration
	Stream           bool
	FallbackProvider string
	FallbackModel    string

	// Path flags
	Source   string
	Prompt   string
	Glossary string
	Output   string
	Suffix   string

	// Translation memory flags
	CachePath string
	NoCache   bool

	// Translate flags
	BatchFile string
	NoReview  bool
	Highlight string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:    "warn",
		LogFormat:   "console",
		Provider:    "openai",
		Model:       "gpt-4o",
		Temperature: 0.1,
		Timeout:     5 * time.Minute,
		Stream:      true,
		Source:      "./source_docs/models.md",
		Prompt:      "./prompts/nmt.yaml",
		Glossary:    "./glossary/glossary.json",
		Output:      "./output/models_ko.md",
		Suffix:      "ko",
		CachePath:   defaultCachePath(),
		Highlight:   "ansi",
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "glossmd", "memory.db")
}
