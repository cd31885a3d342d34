package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GeminiModel talks to the Gemini API through the Google Gen AI SDK.
type GeminiModel struct {
	model  string
	apiKey string
	config *genai.GenerateContentConfig
	client *genai.Client
}

// NewGeminiModel creates a Gemini model. A non-empty BaseURL overrides the
// API endpoint.
func NewGeminiModel(config *Config) (*GeminiModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	temperature := float32(config.Temperature)
	return &GeminiModel{
		model:  config.Model,
		apiKey: config.APIKey,
		config: &genai.GenerateContentConfig{Temperature: &temperature},
		client: client,
	}, nil
}

// Complete generates the whole response in one call.
func (m *GeminiModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), m.config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	return resp.Text(), nil
}

// Stream yields the text of every streamed response chunk.
func (m *GeminiModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range m.client.Models.GenerateContentStream(ctx, m.model, genai.Text(prompt), m.config) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream error: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Name returns provider and model.
func (m *GeminiModel) Name() string {
	return ProviderGemini + "/" + m.model
}

// IsAvailable only checks local configuration.
func (m *GeminiModel) IsAvailable() error {
	if m.apiKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}
	return nil
}
