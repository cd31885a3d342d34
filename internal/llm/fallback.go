package llm

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// ModelWithFallback wraps a primary model with a fallback option.
type ModelWithFallback struct {
	primary  Model
	fallback Model
	logger   *zap.Logger
}

// NewModelWithFallback creates a model that falls back to secondary if primary fails.
func NewModelWithFallback(primary, fallback Model, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete tries the primary model first, falls back to the secondary on error.
func (m *ModelWithFallback) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := m.primary.Complete(ctx, prompt)
	if err == nil {
		return text, nil
	}

	m.logger.Warn("primary model failed, falling back",
		zap.String("primary", m.primary.Name()),
		zap.String("fallback", m.fallback.Name()),
		zap.Error(err),
	)
	return m.fallback.Complete(ctx, prompt)
}

// Stream switches to the fallback only if the primary fails before yielding
// anything; a stream that already produced output cannot be restarted.
func (m *ModelWithFallback) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		started := false
		for fragment, err := range m.primary.Stream(ctx, prompt) {
			if err != nil {
				if started {
					yield("", err)
					return
				}
				m.logger.Warn("primary model stream failed, falling back",
					zap.String("primary", m.primary.Name()),
					zap.String("fallback", m.fallback.Name()),
					zap.Error(err),
				)
				for fb, fbErr := range m.fallback.Stream(ctx, prompt) {
					if !yield(fb, fbErr) || fbErr != nil {
						return
					}
				}
				return
			}
			started = true
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// Name returns the model name.
func (m *ModelWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", m.primary.Name(), m.fallback.Name())
}

// Primary returns the model tried first.
func (m *ModelWithFallback) Primary() Model {
	return m.primary
}

// IsAvailable checks if at least one model is available.
func (m *ModelWithFallback) IsAvailable() error {
	primaryErr := m.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := m.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both models unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
