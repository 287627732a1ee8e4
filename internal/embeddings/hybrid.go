package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

// HybridEmbedder embeds with primary and, when that fails with
// models.ErrEmbedding or models.ErrRateLimited, retries the whole batch
// with fallback; any other primary error is returned as is. Dimension()
// reports primary's dimension
// only; an operator pairing embedders of different dimensions will see
// vectors rejected by the vector-index collection whenever a fallback
// embed fires, since the core does not validate cross-embedder dimension
// agreement (see spec.md §9's "embedder parity" open question).
type HybridEmbedder struct {
	primary  Embedder
	fallback Embedder
}

// NewHybridEmbedder pairs primary and fallback.
func NewHybridEmbedder(primary, fallback Embedder) *HybridEmbedder {
	return &HybridEmbedder{primary: primary, fallback: fallback}
}

func (e *HybridEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if !errors.Is(err, models.ErrEmbedding) && !errors.Is(err, models.ErrRateLimited) {
		return nil, err
	}
	vectors, fbErr := e.fallback.EmbedBatch(ctx, texts)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: primary failed (%v), fallback failed (%v)", models.ErrEmbedding, err, fbErr)
	}
	return vectors, nil
}

func (e *HybridEmbedder) Dimension() int { return e.primary.Dimension() }
func (e *HybridEmbedder) Name() string   { return e.primary.Name() + "+" + e.fallback.Name() }
