package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/sashabaranov/go-openai"
)

// OpenAIModel talks to the OpenAI chat completion API or a compatible server.
type OpenAIModel struct {
	provider    string
	model       string
	apiKey      string
	temperature float32
	client      *openai.Client
}

// NewOpenAIModel creates a model for the OpenAI API. A non-empty BaseURL
// points the client at another OpenAI-compatible endpoint.
func NewOpenAIModel(config *Config) (*OpenAIModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newOpenAICompatible(config, ProviderOpenAI)
}

func newOpenAICompatible(config *Config, provider string) (*OpenAIModel, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("%s model name is required", provider)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	// The client omits a zero temperature from the request, which would
	// leave the server default of 1 in effect.
	temperature := float32(config.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &OpenAIModel{
		provider:    provider,
		model:       config.Model,
		apiKey:      config.APIKey,
		temperature: temperature,
		client:      openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (m *OpenAIModel) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: m.temperature,
	}
}

// Complete sends prompt and returns the first choice.
func (m *OpenAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, m.request(prompt))
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", m.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream yields content deltas until the server closes the stream.
func (m *OpenAIModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := m.client.CreateChatCompletionStream(ctx, m.request(prompt))
		if err != nil {
			yield("", fmt.Errorf("%s API error: %w", m.provider, err))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("%s stream error: %w", m.provider, err))
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(resp.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}

// Name returns provider and model.
func (m *OpenAIModel) Name() string {
	return m.provider + "/" + m.model
}

// IsAvailable only checks local configuration; a test call would cost tokens.
func (m *OpenAIModel) IsAvailable() error {
	if m.apiKey == "" {
		return fmt.Errorf("%s API key not configured", m.provider)
	}
	return nil
}
