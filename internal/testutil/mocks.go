package testutil

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// MockModel mocks a language model. It satisfies llm.Model.
type MockModel struct {
	// ModelName is returned by Name; defaults to "mock".
	ModelName string
	// Respond produces the full response for a prompt.
	Respond func(prompt string) (string, error)
	// FragmentSize is the number of runes per streamed fragment (default 3).
	FragmentSize int
	// StreamErrAfter, when positive, fails the stream after that many fragments.
	StreamErrAfter int
	// Unavailable is returned by IsAvailable.
	Unavailable error

	Calls []string
}

// NewUppercaseModel returns a model that answers with the uppercased prompt.
func NewUppercaseModel() *MockModel {
	return &MockModel{
		Respond: func(prompt string) (string, error) {
			return strings.ToUpper(prompt), nil
		},
	}
}

// NewFailingModel returns a model that fails whenever the prompt contains substr
// and uppercases everything else.
func NewFailingModel(substr string, err error) *MockModel {
	return &MockModel{
		Respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, substr) {
				return "", err
			}
			return strings.ToUpper(prompt), nil
		},
	}
}

// Complete mocks a synchronous completion.
func (m *MockModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("complete: %s", prompt))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.respond(prompt)
}

// Stream mocks a streamed completion by cutting the response into fragments.
func (m *MockModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	m.Calls = append(m.Calls, fmt.Sprintf("stream: %s", prompt))

	return func(yield func(string, error) bool) {
		text, err := m.respond(prompt)
		if err != nil {
			yield("", err)
			return
		}

		size := m.FragmentSize
		if size <= 0 {
			size = 3
		}
		runes := []rune(text)
		for i, n := 0, 0; i < len(runes); i, n = i+size, n+1 {
			if m.StreamErrAfter > 0 && n == m.StreamErrAfter {
				yield("", fmt.Errorf("mock stream interrupted"))
				return
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			end := min(i+size, len(runes))
			if !yield(string(runes[i:end]), nil) {
				return
			}
		}
	}
}

// Name returns the mock model name.
func (m *MockModel) Name() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}

// IsAvailable returns the configured availability error.
func (m *MockModel) IsAvailable() error {
	return m.Unavailable
}

func (m *MockModel) respond(prompt string) (string, error) {
	if m.Respond == nil {
		return prompt, nil
	}
	return m.Respond(prompt)
}
