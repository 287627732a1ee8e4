// Package retrieval implements the query-time half of the service:
// embed the query, run a filtered k-NN search, hydrate hits, and gate
// the whole request behind a proof-of-possession check.
package retrieval

import (
	"context"
	"fmt"

	"github.com/forge-indexer/forge-indexer/internal/embeddings"
	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/vectorindex"
)

// defaultK is used when the caller's request omits k or sets it to zero.
const defaultK = 10

// Retriever answers the retrieval algorithm against a single collection.
// It never reranks, deduplicates, or merges hits: ranking is defined
// solely by the vector index's cosine score.
type Retriever struct {
	embedder   embeddings.Embedder
	index      vectorindex.Index
	collection string
}

// New builds a Retriever over collection, querying it through index using
// embedder to vectorize incoming query strings. The caller is responsible
// for ensuring embedder produces vectors comparable to those stored at
// index time; this is not enforced here, and is left to the operator.
func New(embedder embeddings.Embedder, index vectorindex.Index, collection string) *Retriever {
	return &Retriever{embedder: embedder, index: index, collection: collection}
}

// Retrieve runs the five-step algorithm: validate proof-of-possession,
// embed the query, search, hydrate, return. A proof-of-possession
// failure is returned as models.ErrAuth; a downstream embedding or
// vector-index failure is wrapped in the appropriate sentinel for the
// HTTP/MCP layer to map to a status code.
func (r *Retriever) Retrieve(ctx context.Context, req models.RetrieveRequest) ([]models.RetrievedChunk, error) {
	if !ValidateProofOfPossession(req.FileHashes) {
		return nil, fmt.Errorf("%w: proof of possession failed", models.ErrAuth)
	}

	vectors, err := r.embedder.EmbedBatch(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", models.ErrEmbedding, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for 1 query", models.ErrEmbedding, len(vectors))
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}

	hits, err := r.index.Search(ctx, r.collection, vectors[0], k, vectorindex.Filter{
		Repo:   req.Repo,
		Branch: req.Branch,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", models.ErrVectorIndex, err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Payload.Path == "" {
			continue
		}
		chunks = append(chunks, models.RetrievedChunk{
			Code:      hit.Payload.Code,
			Path:      hit.Payload.Path,
			Score:     hit.Score,
			ChunkHash: hit.Payload.ChunkID,
		})
	}
	return chunks, nil
}
