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

// modelDimensions records the embedding_dimension() for OpenAI's
// published embedding models, since the API itself never reports it
// out of band — the core needs it before the first real embed call, to
// size the vector-index collection at construction time (spec.md §4.2).
var modelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder talks to an OpenAI-compatible embeddings endpoint. It is
// the generalization of the teacher's Ollama-specific Client: same
// connection-pooling transport, same batch-then-request shape, but built
// against a real third-party API that accepts a whole batch per request
// instead of one prompt per call.
type OpenAIEmbedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimension  int
}

// NewOpenAIEmbedder builds an embedder for cfg.Embeddings. If
// cfg.TruncateDimension is set (and is not larger than the model's
// native dimension) it's used in the request as OpenAI's native MRL-style
// "dimensions" parameter, mirroring the teacher's MRL truncation knob but
// performed server-side rather than by post-hoc slicing.
func NewOpenAIEmbedder(cfg config.EmbeddingsConfig) *OpenAIEmbedder {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
	}

	dim := modelDimensions[cfg.OpenAIModel]
	if dim == 0 {
		dim = 3072
	}
	if cfg.TruncateDimension > 0 && cfg.TruncateDimension < dim {
		dim = cfg.TruncateDimension
	}

	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: 60 * time.Second, Transport: transport},
		baseURL:    cfg.OpenAIBaseURL,
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
		dimension:  dim,
	}
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponseItem struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embedResponse struct {
	Data []embedResponseItem `json:"data"`
}

// EmbedBatch submits the whole batch in a single request, the way the
// real OpenAI embeddings endpoint is built to be called, rather than
// fanning out one goroutine per text as the teacher's Ollama client did
// (Ollama's API has no batch input; OpenAI's does).
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody, err := json.Marshal(embedRequest{
		Model:      e.model,
		Input:      texts,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", models.ErrEmbedding, err)
	}

	url := fmt.Sprintf("%s/embeddings", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", models.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: openai rate limited", models.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: openai returned status %d: %s", models.ErrEmbedding, resp.StatusCode, string(body))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrEmbedding, err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", models.ErrEmbedding, len(texts), len(decoded.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range decoded.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", models.ErrEmbedding, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int { return e.dimension }
func (e *OpenAIEmbedder) Name() string   { return "openai:" + e.model }
