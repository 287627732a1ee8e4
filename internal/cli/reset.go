package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forge-indexer/forge-indexer/internal/embeddings"
	"github.com/forge-indexer/forge-indexer/internal/vectorindex"
)

var resetEmbedderFlags embedderFlags

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the vector-index collection",
	Long: `reset constructs the configured embedder solely to learn its
embedding dimension, then drops and recreates the vector-index collection
with that dimension. No files are reprocessed; the next index run
repopulates the collection from scratch.`,
	RunE: runReset,
}

func init() {
	addEmbedderFlags(resetCmd, &resetEmbedderFlags)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(resetEmbedderFlags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	emb, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("construct embedder: %w", err)
	}

	idx, err := vectorindex.NewQdrantIndex(cfg.VectorDB.URL, logger)
	if err != nil {
		return fmt.Errorf("connect to vector index: %w", err)
	}

	ctx := context.Background()
	collection := cfg.VectorDB.CollectionName()

	logger.Info("dropping collection", "collection", collection)
	if err := idx.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("drop collection %s: %w", collection, err)
	}

	logger.Info("recreating collection", "collection", collection, "dimension", emb.Dimension())
	if err := idx.EnsureCollection(ctx, collection, emb.Dimension(), cfg.VectorDB.DistanceMetric); err != nil {
		return fmt.Errorf("recreate collection %s: %w", collection, err)
	}

	fmt.Printf("collection %s reset with dimension %d\n", collection, emb.Dimension())
	return nil
}
