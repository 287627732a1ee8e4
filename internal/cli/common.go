package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forge-indexer/forge-indexer/pkg/config"
)

// embedderFlags are the --embedder/--openai-api-key/--local-model-path/
// --local-tokenizer-path flags spec.md §6 names, shared by index and
// reset.
type embedderFlags struct {
	backend            string
	openAIAPIKey       string
	localModelPath     string
	localTokenizerPath string
}

func addEmbedderFlags(cmd *cobra.Command, f *embedderFlags) {
	cmd.Flags().StringVar(&f.backend, "embedder", "", "embedder backend: openai, local, or hybrid")
	cmd.Flags().StringVar(&f.openAIAPIKey, "openai-api-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")
	cmd.Flags().StringVar(&f.localModelPath, "local-model-path", "", "path to a local embedding model")
	cmd.Flags().StringVar(&f.localTokenizerPath, "local-tokenizer-path", "", "path to a local tokenizer")
}

// loadConfig loads configuration per spec.md §6's layering, then applies
// whatever embedder flags were set on cmd on top, since CLI flags carry
// the highest precedence.
func loadConfig(f embedderFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.backend != "" {
		cfg.Embeddings.Backend = f.backend
	}
	if f.openAIAPIKey != "" {
		cfg.Embeddings.OpenAIAPIKey = f.openAIAPIKey
	}
	if f.localModelPath != "" {
		cfg.Embeddings.LocalModelPath = f.localModelPath
	}
	if f.localTokenizerPath != "" {
		cfg.Embeddings.LocalTokenizerPath = f.localTokenizerPath
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
