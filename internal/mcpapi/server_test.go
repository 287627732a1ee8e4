package mcpapi

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/retrieval"
	"github.com/forge-indexer/forge-indexer/internal/vectorindex"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dim)
	}
	return vectors, nil
}
func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Name() string   { return "fake" }

type fakeIndex struct{ hits []vectorindex.Hit }

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string, dim int, metric string) error {
	return nil
}
func (f *fakeIndex) Upsert(ctx context.Context, name, pointID string, vector []float32, payload models.Payload) error {
	return nil
}
func (f *fakeIndex) Search(ctx context.Context, name string, vector []float32, k int, filter vectorindex.Filter) ([]vectorindex.Hit, error) {
	return f.hits, nil
}
func (f *fakeIndex) DeleteCollection(ctx context.Context, name string) error { return nil }

func newTestServer(hits []vectorindex.Hit) *Server {
	r := retrieval.New(&fakeEmbedder{dim: 3}, &fakeIndex{hits: hits}, "forge-indexer")
	return NewServer("forge-indexer", "0.1.0-test", r, nil)
}

func callToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleRetrieveCode_MissingQueryReturnsErrorResult(t *testing.T) {
	s := newTestServer(nil)
	result, err := s.handleRetrieveCode(context.Background(), callToolRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a missing query")
	}
}

func TestHandleRetrieveCode_ReturnsHitsAsJSON(t *testing.T) {
	s := newTestServer([]vectorindex.Hit{
		{Payload: models.Payload{Path: "a.go", ChunkID: "c1", Code: "func a() {}"}, Score: 0.9},
	})

	result, err := s.handleRetrieveCode(context.Background(), callToolRequest(map[string]interface{}{
		"query": "find a",
		"repo":  "*",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected a success result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if !strings.Contains(text.Text, "a.go") {
		t.Fatalf("expected the hit's path in the result text, got %q", text.Text)
	}
}

func TestHandleRetrieveCode_PropagatesProofOfPossessionFailure(t *testing.T) {
	s := newTestServer(nil)
	result, err := s.handleRetrieveCode(context.Background(), callToolRequest(map[string]interface{}{
		"query":       "find a",
		"file_hashes": map[string]interface{}{"/no/such/file": "deadbeef"},
	}))
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result on proof-of-possession failure")
	}
}
