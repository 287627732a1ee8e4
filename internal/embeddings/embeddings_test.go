package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

func TestBatch_LastBatchSmaller(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "x"
	}
	batches := Batch(texts, 10)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 10 || len(batches[1]) != 10 || len(batches[2]) != 5 {
		t.Fatalf("unexpected batch sizes: %v", sizes(batches))
	}
}

func sizes(batches [][]string) []int {
	out := make([]int, len(batches))
	for i, b := range batches {
		out[i] = len(b)
	}
	return out
}

type fakeEmbedder struct {
	dim     int
	name    string
	err     error
	calls   int
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = make([]float32, f.dim)
	}
	return vecs, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Name() string   { return f.name }

func TestHybridEmbedder_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeEmbedder{dim: 8, name: "primary", err: errors.New("boom")}
	primary.err = models.ErrEmbedding
	fallback := &fakeEmbedder{dim: 8, name: "fallback"}

	hybrid := NewHybridEmbedder(primary, fallback)
	vectors, err := hybrid.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if fallback.calls != 1 {
		t.Fatalf("expected fallback to be called once, got %d", fallback.calls)
	}
}

func TestHybridEmbedder_PrimarySuccessSkipsFallback(t *testing.T) {
	primary := &fakeEmbedder{dim: 8, name: "primary"}
	fallback := &fakeEmbedder{dim: 8, name: "fallback"}

	hybrid := NewHybridEmbedder(primary, fallback)
	if _, err := hybrid.EmbedBatch(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("expected fallback not to be called, got %d calls", fallback.calls)
	}
}

func TestTokenCounter_AdvisoryOnly(t *testing.T) {
	counter, err := NewTokenCounter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.Count("") != 0 {
		t.Fatalf("expected zero tokens for empty string")
	}
	if counter.Count("hello world") == 0 {
		t.Fatal("expected a positive token count for non-empty text")
	}
}
