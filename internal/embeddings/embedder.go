// Package embeddings implements the Embedder capability spec.md §2/§6
// describes as an external collaborator: embed_batch(texts) → vectors,
// with a fixed embedding_dimension() for the object's lifetime. The core
// pipeline only ever talks to the Embedder interface; concrete backends
// (OpenAI-compatible HTTP API, a local model server, or a hybrid of the
// two) are swappable adapters, the way the teacher's embeddings package
// treats Ollama as one interchangeable backend behind a narrow
// generator interface.
package embeddings

import (
	"context"
	"fmt"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/pkg/config"
)

// Embedder is the capability contract of spec.md §6.
type Embedder interface {
	// EmbedBatch returns one vector per text, in order. len(result) must
	// equal len(texts); each vector has length Dimension(). Safe to call
	// concurrently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is stable for the object's lifetime.
	Dimension() int

	// Name identifies the backend, e.g. for logging.
	Name() string
}

// New constructs the Embedder selected by cfg.Backend ("openai", "local",
// or "hybrid"), per the CLI --embedder flag of spec.md §6.
func New(cfg config.EmbeddingsConfig) (Embedder, error) {
	switch cfg.Backend {
	case "", "openai":
		return NewOpenAIEmbedder(cfg), nil
	case "local":
		return NewLocalEmbedder(cfg)
	case "hybrid":
		local, err := NewLocalEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("hybrid embedder: %w", err)
		}
		return NewHybridEmbedder(local, NewOpenAIEmbedder(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedder backend %q", models.ErrConfiguration, cfg.Backend)
	}
}
