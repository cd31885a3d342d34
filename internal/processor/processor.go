package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/batch"
	"codeberg.org/snonux/glossmd/internal/cache"
	"codeberg.org/snonux/glossmd/internal/engine"
	"codeberg.org/snonux/glossmd/internal/glossary"
	"codeberg.org/snonux/glossmd/internal/highlight"
	"codeberg.org/snonux/glossmd/internal/llm"
	"codeberg.org/snonux/glossmd/internal/prompt"
	"codeberg.org/snonux/glossmd/internal/review"
	"codeberg.org/snonux/glossmd/internal/session"
	"codeberg.org/snonux/glossmd/internal/splitter"
)

// Processor runs translation jobs and hands each result to a review session
// or straight to disk.
type Processor struct {
	config *Config
	logger *zap.Logger
	in     io.Reader
	out    io.Writer
	editor review.Editor

	model llm.Model
	store cache.Store
	close func() error

	entries  []glossary.Entry
	template *prompt.Template
}

// Option customises a Processor.
type Option func(*Processor)

// WithModel replaces the model built from the configuration.
func WithModel(m llm.Model) Option {
	return func(p *Processor) { p.model = m }
}

// WithStore replaces the translation memory opened from the configuration.
func WithStore(s cache.Store) Option {
	return func(p *Processor) { p.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithIO sets the terminal the processor talks to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(p *Processor) {
		p.in = in
		p.out = out
	}
}

// WithEditor sets the editor used by the review loop.
func WithEditor(e review.Editor) Option {
	return func(p *Processor) { p.editor = e }
}

// NewProcessor creates a new processor. The model and the translation
// memory are created on first use.
func NewProcessor(config *Config, opts ...Option) *Processor {
	p := &Processor{
		config: config,
		logger: zap.NewNop(),
		in:     os.Stdin,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close releases the translation memory.
func (p *Processor) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// ProcessDocument translates the configured source document. With review
// enabled the result opens in the review loop, otherwise it is saved to the
// output path directly.
func (p *Processor) ProcessDocument(ctx context.Context) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	s, results, err := p.Translate(ctx, p.config.Source)
	if err != nil {
		return err
	}
	p.printSummary(results)

	// An interrupted run is not saved over an existing translation
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("translation interrupted: %w", err)
	}

	if p.config.Review {
		return p.runReview(ctx, s, true)
	}

	if err := s.Save(p.config.Output); err != nil {
		if p.config.Interactive {
			fmt.Fprintf(p.out, "Error: %v\nOpening review, use 'save <path>' to keep the translation.\n", err)
			return p.runReview(ctx, s, true)
		}
		return p.notSaved(err)
	}
	fmt.Fprintf(p.out, "\nDone! Translation saved to: %s\n", p.config.Output)
	return nil
}

// ProcessBatch translates every job of a job file one after another and
// saves each result without review. A failing job does not stop the batch.
func (p *Processor) ProcessBatch(ctx context.Context, jobFile string) error {
	jobs, err := batch.ReadJobFile(jobFile)
	if err != nil {
		return err
	}
	if err := p.config.validateModel(); err != nil {
		return err
	}

	var errs error
	processedCount := 0
	failedChunks := 0

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(jobs), job.Source)

		s, results, err := p.Translate(ctx, job.Source)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			fmt.Fprintf(p.out, "  Error: %v\n", err)
			errs = multierr.Append(errs, fmt.Errorf("job on line %d: %w", job.Line, err))
			continue
		}
		if err := s.Save(job.Output); err != nil {
			err = p.notSaved(err)
			fmt.Fprintf(p.out, "  Error: %v\n", err)
			errs = multierr.Append(errs, fmt.Errorf("job on line %d: %w", job.Line, err))
			continue
		}

		failedChunks += engine.Failed(results)
		processedCount++
		fmt.Fprintf(p.out, "  Saved: %s\n", job.Output)
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Summary ===\n")
	fmt.Fprintf(p.out, "Total documents: %d\n", len(jobs))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	if failedChunks > 0 {
		fmt.Fprintf(p.out, "Chunks with errors: %d\n", failedChunks)
	}
	if n := len(multierr.Errors(errs)); n > 0 {
		fmt.Fprintf(p.out, "Failed documents: %d\n", n)
	}
	fmt.Fprintf(p.out, "=====================\n")

	return errs
}

// ReviewExisting opens an already translated document next to its source in
// the review loop without calling the model.
func (p *Processor) ReviewExisting(ctx context.Context) error {
	if err := p.config.ValidateReview(); err != nil {
		return err
	}

	source, err := readDocument(p.config.Source)
	if err != nil {
		return err
	}
	translated, err := readDocument(p.config.Output)
	if err != nil {
		return err
	}

	if p.config.Glossary != "" {
		entries, err := glossary.Load(p.config.Glossary)
		if err != nil {
			return err
		}
		p.entries = entries
	}

	sources := splitter.Texts(splitter.Split(source))
	translations := splitter.Texts(splitter.Split(translated))
	if len(sources) != len(translations) {
		fmt.Fprintf(p.out, "Note: source has %d sections, translation has %d\n", len(sources), len(translations))
	}

	return p.runReview(ctx, session.FromTexts(sources, translations), false)
}

// ShowGlossary validates the glossary and prints the rules the prompt will
// carry.
func (p *Processor) ShowGlossary(w io.Writer) error {
	entries, err := glossary.Load(p.config.Glossary)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d entries\n", p.config.Glossary, len(entries))
	if len(entries) > 0 {
		fmt.Fprintln(w, prompt.Instructions(entries))
	}
	return nil
}

// Translate runs the engine over one source document and returns a fresh
// session over the results. Glossary, template or source problems abort
// before any model call.
func (p *Processor) Translate(ctx context.Context, sourcePath string) (*session.Session, []engine.Result, error) {
	tmpl, err := p.loadTemplate()
	if err != nil {
		return nil, nil, err
	}

	text, err := readDocument(sourcePath)
	if err != nil {
		return nil, nil, err
	}

	model, err := p.getModel()
	if err != nil {
		return nil, nil, err
	}
	store, err := p.getStore()
	if err != nil {
		return nil, nil, err
	}

	chunks := splitter.Split(text)
	p.logger.Info("translating document",
		zap.String("source", sourcePath),
		zap.Int("chunks", len(chunks)),
		zap.String("model", model.Name()),
	)

	eng := engine.New(model, *tmpl, engine.Options{
		Stream:  p.config.Stream,
		Timeout: p.config.Timeout,
		Cache:   store,
		Logger:  p.logger,
	})

	progress := newProgress(p.out, len(chunks), p.config.Live && p.config.Stream)
	start := time.Now()
	results := eng.Run(ctx, chunks, progress.observer())
	p.logger.Info("document translated",
		zap.String("source", sourcePath),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed", engine.Failed(results)),
	)

	return session.New(results), results, nil
}

func (p *Processor) loadTemplate() (*prompt.Template, error) {
	if p.template != nil {
		return p.template, nil
	}

	entries, err := glossary.Load(p.config.Glossary)
	if err != nil {
		return nil, err
	}
	base, err := prompt.LoadTemplate(p.config.Prompt)
	if err != nil {
		return nil, err
	}

	tmpl := prompt.Compose(base, entries)
	p.entries = entries
	p.template = &tmpl
	p.logger.Debug("prompt composed", zap.Int("glossary_entries", len(entries)))
	return p.template, nil
}

func (p *Processor) getModel() (llm.Model, error) {
	if p.model != nil {
		return p.model, nil
	}

	model, err := buildModel(p.config, p.logger)
	if err != nil {
		return nil, err
	}
	if err := model.IsAvailable(); err != nil {
		return nil, fmt.Errorf("model %s is not available: %w", model.Name(), err)
	}
	p.model = model
	return model, nil
}

// buildModel wraps the primary model and the optional fallback in circuit
// breakers so a dead provider fails the remaining chunks fast.
func buildModel(config *Config, logger *zap.Logger) (llm.Model, error) {
	primary, err := llm.NewModel(config.Model)
	if err != nil {
		return nil, &apperr.ConfigError{Problems: []string{err.Error()}}
	}
	model := llm.Model(llm.NewBreakerModel(primary, llm.DefaultBreakerConfig(), logger))

	if config.Fallback != nil {
		fallback, err := llm.NewModel(config.Fallback)
		if err != nil {
			return nil, &apperr.ConfigError{Problems: []string{"fallback: " + err.Error()}}
		}
		model = llm.NewModelWithFallback(model, llm.NewBreakerModel(fallback, llm.DefaultBreakerConfig(), logger), logger)
	}
	return model, nil
}

func (p *Processor) getStore() (cache.Store, error) {
	if p.store != nil || !p.config.CacheEnabled {
		return p.store, nil
	}

	store, err := cache.Open(p.config.CachePath, p.logger)
	if err != nil {
		// Translation continues without memory.
		p.logger.Warn("translation memory disabled", zap.String("path", p.config.CachePath), zap.Error(err))
		p.config.CacheEnabled = false
		return nil, nil
	}
	p.store = store
	p.close = store.Close
	return store, nil
}

// runReview opens the review loop. unsaved is set for a fresh translation,
// so quitting asks for confirmation and end of input saves it.
func (p *Processor) runReview(ctx context.Context, s *session.Session, unsaved bool) error {
	marker := highlight.MarkerByName(p.config.Marker)
	loop := review.New(s, review.Config{
		In:          p.in,
		Out:         p.out,
		Editor:      p.editor,
		OutputPath:  p.config.Output,
		Unsaved:     unsaved,
		SourceTerms: glossary.SourceTerms(p.entries),
		TargetTerms: glossary.TargetTerms(p.entries),
		Marker:      marker,
		Logger:      p.logger,
	})
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if loop.Dirty() {
		fmt.Fprintf(p.out, "Unsaved changes discarded.\n")
	}
	return nil
}

// notSaved explains what is left of a translation whose save failed.
func (p *Processor) notSaved(err error) error {
	if p.store != nil {
		return fmt.Errorf("translation not saved, a rerun takes finished chunks from the translation memory: %w", err)
	}
	return fmt.Errorf("translation not saved, it has to be translated again: %w", err)
}

func (p *Processor) printSummary(results []engine.Result) {
	failed := engine.Failed(results)
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}

	fmt.Fprintf(p.out, "\nTranslated %d chunks", len(results))
	if cached > 0 {
		fmt.Fprintf(p.out, " (%d from translation memory)", cached)
	}
	fmt.Fprintln(p.out)
	if failed > 0 {
		fmt.Fprintf(p.out, "Warning: %d chunk(s) failed and contain an error marker\n", failed)
	}
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &apperr.NotFoundError{Path: path}
		}
		return "", &apperr.IOError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// chunkLabel names a chunk in progress output.
func chunkLabel(c splitter.Chunk) string {
	if h := c.Heading(); h != "" {
		return h
	}
	if strings.TrimSpace(c.Text) == "" {
		return "(blank)"
	}
	return "(preamble)"
}
