package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/vectorindex"
)

type fakeEmbedder struct {
	dim     int
	lastErr error
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dim)
	}
	return vectors, nil
}
func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Name() string   { return "fake" }

type fakeIndex struct {
	hits       []vectorindex.Hit
	gotFilter  vectorindex.Filter
	gotK       int
	searchErr  error
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string, dim int, metric string) error {
	return nil
}
func (f *fakeIndex) Upsert(ctx context.Context, name, pointID string, vector []float32, payload models.Payload) error {
	return nil
}
func (f *fakeIndex) Search(ctx context.Context, name string, vector []float32, k int, filter vectorindex.Filter) ([]vectorindex.Hit, error) {
	f.gotFilter = filter
	f.gotK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}
func (f *fakeIndex) DeleteCollection(ctx context.Context, name string) error { return nil }

func TestRetrieve_RejectsOnProofOfPossessionFailure(t *testing.T) {
	idx := &fakeIndex{}
	r := New(&fakeEmbedder{dim: 3}, idx, "forge-indexer")

	_, err := r.Retrieve(context.Background(), models.RetrieveRequest{
		Query:      "find the parser",
		FileHashes: map[string]string{"/no/such/file": "deadbeef"},
	})
	if !errors.Is(err, models.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if idx.gotK != 0 {
		t.Fatal("expected search to never be invoked on a proof-of-possession failure")
	}
}

func TestRetrieve_PassesRepoAndBranchFilterThrough(t *testing.T) {
	idx := &fakeIndex{hits: []vectorindex.Hit{
		{Payload: models.Payload{Path: "acme/forge/src/a.rs", ChunkID: "c1"}, Score: 0.9},
	}}
	r := New(&fakeEmbedder{dim: 3}, idx, "forge-indexer")

	chunks, err := r.Retrieve(context.Background(), models.RetrieveRequest{
		Query:  "find the parser",
		Repo:   "forge",
		Branch: "R1",
		K:      5,
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if idx.gotFilter.Repo != "forge" || idx.gotFilter.Branch != "R1" {
		t.Fatalf("expected filter to carry through, got %+v", idx.gotFilter)
	}
	if idx.gotK != 5 {
		t.Fatalf("expected k=5, got %d", idx.gotK)
	}
	if len(chunks) != 1 || chunks[0].Path != "acme/forge/src/a.rs" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

func TestRetrieve_DefaultsKToTen(t *testing.T) {
	idx := &fakeIndex{}
	r := New(&fakeEmbedder{dim: 3}, idx, "forge-indexer")

	if _, err := r.Retrieve(context.Background(), models.RetrieveRequest{Query: "x"}); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if idx.gotK != defaultK {
		t.Fatalf("expected default k=%d, got %d", defaultK, idx.gotK)
	}
}

func TestRetrieve_DropsHitsWithMalformedPayload(t *testing.T) {
	idx := &fakeIndex{hits: []vectorindex.Hit{
		{Payload: models.Payload{Path: "", ChunkID: "bad"}, Score: 0.5},
		{Payload: models.Payload{Path: "good/path.go", ChunkID: "good"}, Score: 0.8},
	}}
	r := New(&fakeEmbedder{dim: 3}, idx, "forge-indexer")

	chunks, err := r.Retrieve(context.Background(), models.RetrieveRequest{Query: "x"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ChunkHash != "good" {
		t.Fatalf("expected only the well-formed hit to survive, got %+v", chunks)
	}
}

func TestRetrieve_WrapsEmbeddingFailure(t *testing.T) {
	idx := &fakeIndex{}
	r := New(&fakeEmbedder{dim: 3, lastErr: errors.New("backend down")}, idx, "forge-indexer")

	_, err := r.Retrieve(context.Background(), models.RetrieveRequest{Query: "x"})
	if !errors.Is(err, models.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestRetrieve_WrapsVectorIndexFailure(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("qdrant unreachable")}
	r := New(&fakeEmbedder{dim: 3}, idx, "forge-indexer")

	_, err := r.Retrieve(context.Background(), models.RetrieveRequest{Query: "x"})
	if !errors.Is(err, models.ErrVectorIndex) {
		t.Fatalf("expected ErrVectorIndex, got %v", err)
	}
}
