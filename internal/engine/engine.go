// Package engine translates document chunks one at a time through a language
// model, tolerating failures of individual chunks.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/cache"
	"codeberg.org/snonux/glossmd/internal/llm"
	"codeberg.org/snonux/glossmd/internal/prompt"
	"codeberg.org/snonux/glossmd/internal/splitter"
)

const fence = "```"

// Result is the outcome for one chunk. Text holds either the translation or
// an error marker; Err is non-nil only in the latter case.
type Result struct {
	Index  int
	Source string
	Text   string
	Err    error
	Cached bool
}

// PartialFunc receives the text accumulated so far while a chunk streams.
type PartialFunc func(partial string)

// Options configure an Engine.
type Options struct {
	// Stream selects incremental model output.
	Stream bool
	// Timeout bounds each chunk's model call; zero means no limit.
	Timeout time.Duration
	// Cache, if set, is consulted before and filled after each model call.
	Cache  cache.Store
	Logger *zap.Logger
}

// Observer receives progress callbacks during Run. Nil fields are skipped.
type Observer struct {
	OnStart   func(chunk splitter.Chunk)
	OnPartial func(chunk splitter.Chunk, partial string)
	OnResult  func(result Result)
}

// Engine translates chunks with a composed prompt template.
type Engine struct {
	model    llm.Model
	template prompt.Template
	opts     Options
	logger   *zap.Logger
}

// New creates an engine.
func New(model llm.Model, template prompt.Template, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		model:    model,
		template: template,
		opts:     opts,
		logger:   logger,
	}
}

// Run translates chunks strictly in document order. A failed chunk never
// stops the run.
func (e *Engine) Run(ctx context.Context, chunks []splitter.Chunk, obs Observer) []Result {
	results := make([]Result, 0, len(chunks))

	for _, chunk := range chunks {
		if obs.OnStart != nil {
			obs.OnStart(chunk)
		}

		var onPartial PartialFunc
		if obs.OnPartial != nil {
			onPartial = func(partial string) { obs.OnPartial(chunk, partial) }
		}

		result := e.TranslateChunk(ctx, chunk, onPartial)
		results = append(results, result)

		if obs.OnResult != nil {
			obs.OnResult(result)
		}
	}

	return results
}

// TranslateChunk translates a single chunk. Blank chunks pass through without
// a model call. onPartial, if non-nil, sees the accumulated text after every
// streamed fragment.
func (e *Engine) TranslateChunk(ctx context.Context, chunk splitter.Chunk, onPartial PartialFunc) Result {
	result := Result{Index: chunk.Index, Source: chunk.Text}

	if strings.TrimSpace(chunk.Text) == "" {
		result.Text = chunk.Text
		return result
	}

	rendered := e.template.Render(chunk.Text)
	memoryName := llm.PrimaryName(e.model)
	key := cache.Key(memoryName, rendered)
	log := e.logger.With(zap.Int("chunk", chunk.Index+1), zap.String("model", e.model.Name()))

	if e.opts.Cache != nil {
		text, found, err := e.opts.Cache.Get(ctx, key)
		if err != nil {
			log.Warn("translation memory lookup failed", zap.Error(err))
		} else if found {
			log.Debug("translation memory hit")
			result.Text = text
			result.Cached = true
			return result
		}
	}

	callCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := e.invoke(callCtx, rendered, onPartial)
	if err != nil {
		merr := &apperr.ModelInvocationError{Model: e.model.Name(), Chunk: chunk.Index, Err: err}
		log.Error("chunk translation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		result.Text = ErrorMarker(merr)
		result.Err = merr
		return result
	}

	result.Text = NormalizeFence(text)
	log.Info("chunk translated",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("source_bytes", len(chunk.Text)),
		zap.Int("result_bytes", len(result.Text)),
	)

	if e.opts.Cache != nil {
		if err := e.opts.Cache.Put(ctx, key, memoryName, result.Text); err != nil {
			log.Warn("translation memory store failed", zap.Error(err))
		}
	}

	return result
}

func (e *Engine) invoke(ctx context.Context, rendered string, onPartial PartialFunc) (string, error) {
	if !e.opts.Stream {
		return e.model.Complete(ctx, rendered)
	}

	var acc strings.Builder
	for fragment, err := range e.model.Stream(ctx, rendered) {
		if err != nil {
			return "", err
		}
		acc.WriteString(fragment)
		if onPartial != nil {
			onPartial(acc.String())
		}
	}
	return acc.String(), nil
}

// NormalizeFence turns a response that is a single-line fenced code block,
// e.g. "```x = 1```", into the inline code span "`x = 1`". Anything else,
// including multi-line fenced blocks, is returned unchanged.
func NormalizeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2*len(fence) || !strings.HasPrefix(trimmed, fence) || !strings.HasSuffix(trimmed, fence) {
		return text
	}

	inner := trimmed[len(fence) : len(trimmed)-len(fence)]
	if strings.Contains(inner, "\n") {
		return text
	}
	inner = strings.TrimSpace(inner)
	if inner == "" || strings.Contains(inner, fence) {
		return text
	}
	return "`" + inner + "`"
}

// ErrorMarker is the visible placeholder that replaces a failed chunk.
func ErrorMarker(err error) string {
	return fmt.Sprintf("[translation failed: %v]", err)
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Texts returns the result texts in order.
func Texts(results []Result) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}
