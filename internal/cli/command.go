package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/glossmd/internal"
	"codeberg.org/snonux/glossmd/internal/cache"
	"codeberg.org/snonux/glossmd/internal/llm"
	"codeberg.org/snonux/glossmd/internal/models"
	"codeberg.org/snonux/glossmd/internal/processor"
)

// CreateRootCommand creates and configures the root cobra command. Running
// the root command without a subcommand translates, like "translate".
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glossmd",
		Short: "Glossary-constrained markdown translator",
		Long: `glossmd translates markdown documents section by section with a large
language model. Every section is sent with the rules of a terminology
glossary, the results can be reviewed and edited before they are saved.

Examples:
  glossmd                                   # Translate the configured document and review it
  glossmd translate --source docs/api.md    # Translate another document
  glossmd translate --batch jobs.txt        # Translate "source = output" jobs without review
  glossmd review                            # Review an existing translation
  glossmd glossary                          # Validate the glossary and show its rules`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	translateCmd := newTranslateCommand(flags)
	rootCmd.RunE = translateCmd.RunE

	rootCmd.AddCommand(
		translateCmd,
		newReviewCommand(flags),
		newGlossaryCommand(flags),
		newModelsCommand(),
		newCacheCommand(),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.glossmd.yaml)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: console or json")

	// Model flags
	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Model provider: openai, gemini, ollama")
	pf.StringVarP(&flags.Model, "model", "m", flags.Model, "Model name")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (default depends on provider)")
	pf.Float64Var(&flags.Temperature, "temperature", flags.Temperature, "Sampling temperature (0 to 2)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Time limit per section, 0 for none")
	pf.BoolVar(&flags.Stream, "stream", flags.Stream, "Stream model output while translating")
	pf.StringVar(&flags.FallbackProvider, "fallback-provider", "", "Provider used when the primary model fails")
	pf.StringVar(&flags.FallbackModel, "fallback-model", "", "Fallback model name (default depends on provider)")

	// Path flags
	pf.StringVarP(&flags.Source, "source", "s", flags.Source, "Source markdown document")
	pf.StringVarP(&flags.Prompt, "prompt", "p", flags.Prompt, "Prompt template with {glossary_instructions} and {source}")
	pf.StringVarP(&flags.Glossary, "glossary", "g", flags.Glossary, "Glossary file (JSON or YAML)")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Translated document")
	pf.StringVar(&flags.Suffix, "suffix", flags.Suffix, "Language suffix used to derive --output from --source")

	// Translation memory flags
	pf.StringVar(&flags.CachePath, "cache", flags.CachePath, "Translation memory database")
	pf.BoolVar(&flags.NoCache, "no-cache", false, "Disable the translation memory")

	// Review flags
	pf.StringVar(&flags.Highlight, "highlight", flags.Highlight, "Glossary term highlighting in review: ansi, markdown, html, none")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("model.provider", pf.Lookup("provider"))
	viper.BindPFlag("model.name", pf.Lookup("model"))
	viper.BindPFlag("model.base_url", pf.Lookup("base-url"))
	viper.BindPFlag("model.temperature", pf.Lookup("temperature"))
	viper.BindPFlag("model.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("model.stream", pf.Lookup("stream"))
	viper.BindPFlag("model.fallback", pf.Lookup("fallback-provider"))
	viper.BindPFlag("model.fallback_model", pf.Lookup("fallback-model"))
	viper.BindPFlag("paths.source", pf.Lookup("source"))
	viper.BindPFlag("paths.prompt", pf.Lookup("prompt"))
	viper.BindPFlag("paths.glossary", pf.Lookup("glossary"))
	viper.BindPFlag("paths.output", pf.Lookup("output"))
	viper.BindPFlag("paths.suffix", pf.Lookup("suffix"))
	viper.BindPFlag("cache.path", pf.Lookup("cache"))
	viper.BindPFlag("review.highlight", pf.Lookup("highlight"))
	viper.SetDefault("cache.enabled", true)
}

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a document section by section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(cmd, flags, func(proc *processor.Processor) error {
				if flags.BatchFile != "" {
					return proc.ProcessBatch(cmd.Context(), flags.BatchFile)
				}
				return proc.ProcessDocument(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", `Translate the "source = output" jobs listed in a file, without review`)
	cmd.Flags().BoolVar(&flags.NoReview, "no-review", false, "Save the translation without opening the review loop")
	return cmd
}

func newReviewCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review and edit an existing translation next to its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(cmd, flags, func(proc *processor.Processor) error {
				return proc.ReviewExisting(cmd.Context())
			})
		},
	}
}

func newGlossaryCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "glossary",
		Short: "Validate the glossary and print the rules sent with every section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(cmd, flags, func(proc *processor.Processor) error {
				return proc.ShowGlossary(cmd.OutOrStdout())
			})
		},
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List chat models available for the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := viper.GetString("model.provider")
			baseURL := viper.GetString("model.base_url")
			apiKey := ResolveAPIKey(provider)

			switch provider {
			case llm.ProviderOpenAI:
			case llm.ProviderOllama:
				if baseURL == "" {
					baseURL = llm.DefaultOllamaURL
				}
				if apiKey == "" {
					apiKey = "ollama"
				}
			default:
				return fmt.Errorf("listing models is supported for openai and ollama, not %s", provider)
			}

			return models.NewLister(apiKey, baseURL).ListAvailableModels(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the translation memory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how many translations are stored per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *cache.SQLiteStore) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), viper.GetString("cache.path"), stats)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every stored translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *cache.SQLiteStore) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d translations\n", n)
				return nil
			})
		},
	})

	return cmd
}

func withProcessor(cmd *cobra.Command, flags *Flags, run func(*processor.Processor) error) error {
	logger, err := NewLogger(viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	config := ProcessorConfig(flags)
	config.Live = config.Live && isTerminal(cmd.OutOrStdout())
	config.Interactive = isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())

	proc := processor.NewProcessor(config,
		processor.WithLogger(logger),
		processor.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
	)
	defer func() {
		if err := proc.Close(); err != nil {
			logger.Warn("failed to close translation memory", zap.Error(err))
		}
	}()

	return run(proc)
}

func withStore(cmd *cobra.Command, run func(*cache.SQLiteStore) error) error {
	logger, err := NewLogger(viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := cache.Open(viper.GetString("cache.path"), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return run(store)
}

func printStats(w io.Writer, path string, stats map[string]int) {
	fmt.Fprintf(w, "Translation memory: %s\n", path)
	if len(stats) == 0 {
		fmt.Fprintln(w, "  empty")
		return
	}

	names := make([]string, 0, len(stats))
	total := 0
	for name, n := range stats {
		names = append(names, name)
		total += n
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-40s %d\n", name, stats[name])
	}
	fmt.Fprintf(w, "  %-40s %d\n", "total", total)
}

func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
