package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/glossmd/internal"
	"codeberg.org/snonux/glossmd/internal/llm"
	"codeberg.org/snonux/glossmd/internal/processor"
)

// InitConfig loads .env, then initializes viper configuration
func InitConfig(cfgFile string) {
	// Variables already in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".glossmd" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".glossmd")
	}

	// Environment variables, e.g. GLOSSMD_MODEL_NAME for model.name
	viper.SetEnvPrefix("GLOSSMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ResolveAPIKey retrieves the API key for provider from the environment or
// the config file
func ResolveAPIKey(provider string) string {
	return resolveKey(provider, "model.api_key")
}

func resolveKey(provider, configKey string) string {
	// First check environment variables
	var envVars []string
	switch strings.ToLower(provider) {
	case llm.ProviderOpenAI:
		envVars = []string{"OPENAI_API_KEY"}
	case llm.ProviderGemini:
		envVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, name := range envVars {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}

	// Then check config file
	return viper.GetString(configKey)
}

// DefaultModelFor returns the model used when only a provider is configured.
func DefaultModelFor(provider string) string {
	switch strings.ToLower(provider) {
	case llm.ProviderGemini:
		return "gemini-2.0-flash"
	case llm.ProviderOllama:
		return "llama3.1"
	default:
		return "gpt-4o-mini"
	}
}

// primaryModel returns the configured model name. Without one, providers
// other than OpenAI get their own default instead of the gpt-4o flag default.
func primaryModel(provider string) string {
	if !viper.IsSet("model.name") && provider != llm.ProviderOpenAI {
		return DefaultModelFor(provider)
	}
	return viper.GetString("model.name")
}

// ProcessorConfig assembles the run configuration from flags, config file
// and environment.
func ProcessorConfig(flags *Flags) *processor.Config {
	provider := strings.ToLower(viper.GetString("model.provider"))
	temperature := viper.GetFloat64("model.temperature")

	config := &processor.Config{
		Source:   viper.GetString("paths.source"),
		Prompt:   viper.GetString("paths.prompt"),
		Glossary: viper.GetString("paths.glossary"),
		Output:   viper.GetString("paths.output"),
		Model: &llm.Config{
			Provider:    provider,
			Model:       primaryModel(provider),
			APIKey:      ResolveAPIKey(provider),
			BaseURL:     viper.GetString("model.base_url"),
			Temperature: temperature,
		},
		Stream:       viper.GetBool("model.stream"),
		Timeout:      viper.GetDuration("model.timeout"),
		Live:         true,
		CachePath:    viper.GetString("cache.path"),
		CacheEnabled: viper.GetBool("cache.enabled") && !flags.NoCache,
		Review:       !flags.NoReview && flags.BatchFile == "",
		Marker:       viper.GetString("review.highlight"),
	}

	// A new source without an explicit output gets its own output file
	if viper.IsSet("paths.source") && !viper.IsSet("paths.output") {
		dir := filepath.Dir(config.Output)
		config.Output = filepath.Join(dir, internal.TranslatedFilename(config.Source, viper.GetString("paths.suffix")))
	}

	if fallback := strings.ToLower(viper.GetString("model.fallback")); fallback != "" {
		name := viper.GetString("model.fallback_model")
		if name == "" {
			name = DefaultModelFor(fallback)
		}
		config.Fallback = &llm.Config{
			Provider:    fallback,
			Model:       name,
			APIKey:      resolveKey(fallback, "model.fallback_api_key"),
			Temperature: temperature,
		}
	}

	return config
}
