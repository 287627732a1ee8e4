package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/pkg/config"
)

// LocalEmbedder talks to a local embedding server addressed by
// cfg.LocalModelPath, in the single-prompt-per-request shape the
// teacher's Ollama client uses — the concrete local-inference backend is
// an external collaborator per spec.md §1 ("out of scope"), so this
// adapter covers the one real shape the example pack demonstrates
// (an HTTP model server) rather than embedding a model runtime directly.
// cfg.LocalTokenizerPath is accepted for CLI-surface parity with
// spec.md §6 but unused here: tokenization is the local server's concern.
type LocalEmbedder struct {
	httpClient *http.Client
	endpoint   string
	dimension  int
}

// NewLocalEmbedder builds a local embedder. The endpoint is expected to
// accept a {prompt} request and answer with {embedding}, the response
// shape the teacher's Ollama client uses; no model name is sent.
func NewLocalEmbedder(cfg config.EmbeddingsConfig) (*LocalEmbedder, error) {
	if cfg.LocalModelPath == "" {
		return nil, fmt.Errorf("%w: local embedder requires --local-model-path", models.ErrConfiguration)
	}
	dim := cfg.TruncateDimension
	if dim <= 0 {
		dim = 768
	}
	return &LocalEmbedder{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   cfg.LocalModelPath,
		dimension:  dim,
	}, nil
}

type localEmbedRequest struct {
	Prompt string `json:"prompt"`
}

type localEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedBatch issues one request per text: the local server shape this is
// grounded on (Ollama's /api/embeddings) has no native batch input.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *LocalEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(localEmbedRequest{Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", models.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", models.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: local embedder returned status %d: %s", models.ErrEmbedding, resp.StatusCode, string(body))
	}

	var decoded localEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrEmbedding, err)
	}
	return decoded.Embedding, nil
}

func (e *LocalEmbedder) Dimension() int { return e.dimension }
func (e *LocalEmbedder) Name() string   { return "local" }
