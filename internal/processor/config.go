package processor

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/llm"
)

// Config holds everything a translation run needs.
type Config struct {
	Source   string
	Prompt   string
	Glossary string
	Output   string

	Model    *llm.Config
	Fallback *llm.Config

	Stream  bool
	Timeout time.Duration
	// Live prints streamed text as it arrives, followed by a cursor.
	Live bool

	CachePath    string
	CacheEnabled bool

	// Review opens the review loop instead of saving directly.
	Review bool
	// Interactive opens the review loop when saving directly fails, so the
	// result can be written somewhere else.
	Interactive bool
	// Marker selects the term highlighting style of the review loop.
	Marker string
}

// Validate reports every problem that would stop a translation run.
func (c *Config) Validate() error {
	var problems []string
	for _, p := range []struct{ name, value string }{
		{"source document", c.Source},
		{"prompt template", c.Prompt},
		{"glossary", c.Glossary},
		{"output", c.Output},
	} {
		if strings.TrimSpace(p.value) == "" {
			problems = append(problems, p.name+" path is required")
		}
	}
	problems = append(problems, c.modelProblems()...)
	return apperr.NewConfigError(problems...)
}

// ValidateReview reports problems that would stop reviewing an existing
// translation. No model is needed for that.
func (c *Config) ValidateReview() error {
	var problems []string
	if strings.TrimSpace(c.Source) == "" {
		problems = append(problems, "source document path is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "translation path is required")
	}
	return apperr.NewConfigError(problems...)
}

func (c *Config) validateModel() error {
	var problems []string
	if strings.TrimSpace(c.Prompt) == "" {
		problems = append(problems, "prompt template path is required")
	}
	if strings.TrimSpace(c.Glossary) == "" {
		problems = append(problems, "glossary path is required")
	}
	problems = append(problems, c.modelProblems()...)
	return apperr.NewConfigError(problems...)
}

func (c *Config) modelProblems() []string {
	var problems []string
	if c.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.CacheEnabled && strings.TrimSpace(c.CachePath) == "" {
		problems = append(problems, "cache path is required when the translation memory is enabled")
	}
	if c.Model == nil {
		return append(problems, "model configuration is required")
	}
	problems = append(problems, llmProblems("model", c.Model)...)
	if c.Fallback != nil {
		problems = append(problems, llmProblems("fallback model", c.Fallback)...)
	}
	return problems
}

func llmProblems(label string, m *llm.Config) []string {
	var problems []string
	if m.Model == "" {
		problems = append(problems, label+" name is required")
	}
	if m.Temperature < 0 || m.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("%s temperature must be between 0 and 2, got %g", label, m.Temperature))
	}

	switch strings.ToLower(m.Provider) {
	case llm.ProviderOpenAI:
		if m.APIKey == "" {
			problems = append(problems, label+": OpenAI API key not found, set OPENAI_API_KEY")
		}
	case llm.ProviderGemini:
		if m.APIKey == "" {
			problems = append(problems, label+": Gemini API key not found, set GEMINI_API_KEY")
		}
	case llm.ProviderOllama:
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown provider %q (openai, gemini, ollama)", label, m.Provider))
	}
	return problems
}
