package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// DefaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434/v1"

// Model is the capability the translation engine needs from a provider.
type Model interface {
	// Complete returns the full response for prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Stream yields response fragments in arrival order. The sequence is
	// finite and cannot be restarted; a non-nil error ends it.
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]

	// Name identifies provider and model, e.g. "openai/gpt-4o".
	Name() string

	// IsAvailable checks that the model is configured well enough to be called.
	IsAvailable() error
}

// Config holds provider selection and settings.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

// DefaultConfig returns OpenAI gpt-4o at a near-deterministic temperature.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o",
		Temperature: 0.1,
	}
}

// NewModel creates the model selected by config.Provider.
func NewModel(config *Config) (Model, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIModel(config)

	case ProviderOllama:
		cfg := *config
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return newOpenAICompatible(&cfg, ProviderOllama)

	case ProviderGemini:
		if config.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiModel(config)

	default:
		return nil, fmt.Errorf("unknown model provider: %s", config.Provider)
	}
}

// PrimaryName returns the name of the model a decorated model tries first.
// Translations are remembered under this name, so adding or removing a
// fallback keeps the translation memory valid.
func PrimaryName(m Model) string {
	for {
		wrapped, ok := m.(interface{ Primary() Model })
		if !ok {
			return m.Name()
		}
		m = wrapped.Primary()
	}
}
