package llm

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig tunes the circuit breaker around a model.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before a trial call.
	Cooldown time.Duration
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 3, Cooldown: 30 * time.Second}
}

// BreakerModel stops calling a provider that keeps failing, so the remaining
// chunks of a run fail fast instead of waiting for one timeout each.
type BreakerModel struct {
	inner Model
	cb    *gobreaker.TwoStepCircuitBreaker
}

// NewBreakerModel wraps inner with a two-step circuit breaker.
func NewBreakerModel(inner Model, cfg BreakerConfig, logger *zap.Logger) *BreakerModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}

	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("model circuit breaker state changed",
				zap.String("model", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerModel{
		inner: inner,
		cb:    gobreaker.NewTwoStepCircuitBreaker(settings),
	}
}

// Complete calls the inner model unless the breaker is open.
func (m *BreakerModel) Complete(ctx context.Context, prompt string) (string, error) {
	done, err := m.cb.Allow()
	if err != nil {
		return "", fmt.Errorf("%s: %w", m.inner.Name(), err)
	}

	text, err := m.inner.Complete(ctx, prompt)
	done(err == nil)
	return text, err
}

// Stream forwards the inner stream and reports its outcome once it ends.
func (m *BreakerModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		done, err := m.cb.Allow()
		if err != nil {
			yield("", fmt.Errorf("%s: %w", m.inner.Name(), err))
			return
		}

		success := true
		defer func() { done(success) }()

		for fragment, err := range m.inner.Stream(ctx, prompt) {
			if err != nil {
				success = false
				yield("", err)
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// State reports the breaker state, e.g. "closed" or "open".
func (m *BreakerModel) State() string {
	return m.cb.State().String()
}

// Name returns the inner model name.
func (m *BreakerModel) Name() string {
	return m.inner.Name()
}

// IsAvailable reports the inner model availability.
func (m *BreakerModel) IsAvailable() error {
	return m.inner.IsAvailable()
}
