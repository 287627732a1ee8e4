// Package vectorindex implements the vector-index capability against
// Qdrant behind a narrow Index interface the core depends on:
// collection-scoped upsert/search keyed by opaque point IDs, with
// conjunctive payload filtering.
package vectorindex

import (
	"context"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

// Filter is a conjunctive set of payload predicates. The zero value
// matches everything.
type Filter struct {
	Repo   string // repo-match(path, repo); "", ".", "*" are wildcards.
	Branch string // branch-eq(branch_field, branch); "" matches any branch.
}

// Hit is one search result: a hydrated payload and its similarity score.
type Hit struct {
	Payload models.Payload
	Score   float32
}

// Index is the capability the pipeline and retriever consume. Any
// concrete backend (Qdrant here; another vector store elsewhere) must
// satisfy the contract: ensure_collection is idempotent and
// dimension-guarded, upsert is idempotent by point ID, search returns
// cosine-similar k-NN sorted by descending score, delete_collection is
// idempotent.
type Index interface {
	EnsureCollection(ctx context.Context, name string, dim int, metric string) error
	Upsert(ctx context.Context, name string, pointID string, vector []float32, payload models.Payload) error
	Search(ctx context.Context, name string, vector []float32, k int, filter Filter) ([]Hit, error)
	DeleteCollection(ctx context.Context, name string) error
}
