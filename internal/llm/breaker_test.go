package llm

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"codeberg.org/snonux/glossmd/internal/testutil"
)

func TestBreakerModel_OpensAfterConsecutiveFailures(t *testing.T) {
	failing := testutil.NewFailingModel("", errors.New("provider down"))
	m := NewBreakerModel(failing, BreakerConfig{MaxFailures: 2, Cooldown: time.Minute}, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := m.Complete(ctx, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, "open", m.State())

	_, err := m.Complete(ctx, "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, failing.Calls, 2, "open breaker must not reach the provider")

	_, err = collect(m.Stream(ctx, "x"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerModel_SuccessKeepsClosed(t *testing.T) {
	m := NewBreakerModel(testutil.NewUppercaseModel(), DefaultBreakerConfig(), nil)

	got, err := collect(m.Stream(context.Background(), "abc def"))
	require.NoError(t, err)
	assert.Equal(t, "ABC DEF", got)
	assert.Equal(t, "closed", m.State())
	assert.Equal(t, "mock", m.Name())
}

func TestBreakerModel_StreamFailureCounts(t *testing.T) {
	inner := testutil.NewUppercaseModel()
	inner.StreamErrAfter = 1
	m := NewBreakerModel(inner, BreakerConfig{MaxFailures: 1, Cooldown: time.Minute}, nil)

	partial, err := collect(m.Stream(context.Background(), "abcdef"))
	require.Error(t, err)
	assert.Equal(t, "ABC", partial)
	assert.Equal(t, "open", m.State())
}

func TestModelWithFallback_Complete(t *testing.T) {
	primary := testutil.NewFailingModel("", errors.New("quota exceeded"))
	fallback := testutil.NewUppercaseModel()
	fallback.ModelName = "backup"

	m := NewModelWithFallback(primary, fallback, nil)

	got, err := m.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "HI", got)
	assert.Equal(t, "mock (fallback: backup)", m.Name())
}

func TestPrimaryName(t *testing.T) {
	primary := &testutil.MockModel{ModelName: "ollama/llama3"}
	fallback := &testutil.MockModel{ModelName: "openai/gpt-4o-mini"}

	assert.Equal(t, "ollama/llama3", PrimaryName(primary))
	assert.Equal(t, "ollama/llama3", PrimaryName(NewBreakerModel(primary, DefaultBreakerConfig(), nil)))

	m := NewModelWithFallback(NewBreakerModel(primary, DefaultBreakerConfig(), nil), fallback, nil)
	assert.Equal(t, "ollama/llama3", PrimaryName(m))
	assert.Equal(t, "ollama/llama3", PrimaryName(NewModelWithFallback(m, fallback, nil)))
}

func TestModelWithFallback_StreamBeforeOutput(t *testing.T) {
	primary := testutil.NewFailingModel("", errors.New("connection refused"))
	m := NewModelWithFallback(primary, testutil.NewUppercaseModel(), nil)

	got, err := collect(m.Stream(context.Background(), "hello"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestModelWithFallback_StreamAfterOutputIsNotRestarted(t *testing.T) {
	primary := testutil.NewUppercaseModel()
	primary.StreamErrAfter = 1
	fallback := testutil.NewUppercaseModel()

	m := NewModelWithFallback(primary, fallback, nil)

	partial, err := collect(m.Stream(context.Background(), "hello"))
	require.Error(t, err)
	assert.Equal(t, "HEL", partial)
	assert.Empty(t, fallback.Calls)
}

func TestModelWithFallback_IsAvailable(t *testing.T) {
	down := &testutil.MockModel{Unavailable: errors.New("no key")}
	up := &testutil.MockModel{}

	assert.NoError(t, NewModelWithFallback(down, up, nil).IsAvailable())
	assert.Error(t, NewModelWithFallback(down, down, nil).IsAvailable())
}

func TestGeminiModel_New(t *testing.T) {
	_, err := NewGeminiModel(&Config{Model: "gemini-2.0-flash"})
	require.Error(t, err)

	m, err := NewGeminiModel(&Config{Model: "gemini-2.0-flash", APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "gemini/gemini-2.0-flash", m.Name())
	assert.NoError(t, m.IsAvailable())
}

func TestGeminiModel_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	m, err := NewGeminiModel(&Config{Model: "gemini-2.0-flash", APIKey: apiKey, Temperature: 0.1})
	require.NoError(t, err)

	got, err := collect(m.Stream(context.Background(), "Reply with the single word: pong"))
	require.NoError(t, err)
	t.Logf("Response: %s", got)
}
