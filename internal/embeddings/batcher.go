package embeddings

import (
	"github.com/pkoukk/tiktoken-go"
)

// Batch splits chunks' text into groups of at most batchSize, matching
// spec.md §4.2's "batch_size is the maximum batch passed to embed_batch;
// the last batch may be smaller."
func Batch(texts []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	var batches [][]string
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}
	return batches
}

// TokenCounter produces advisory token counts; the chunker folds them
// into each chunk's summary. It never influences chunk boundaries or
// ranking (spec.md §9), the way the teacher's TokenChunker used
// tiktoken-go to size windows rather than to judge relevance.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter builds a counter using the cl100k_base encoding, the
// same one the teacher's token_chunker.go uses.
func NewTokenCounter() (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TokenCounter{enc: enc}, nil
}

// Count returns the advisory token count for text, or 0 if the counter
// is nil (callers may treat token counting as optional instrumentation).
func (t *TokenCounter) Count(text string) int {
	if t == nil || t.enc == nil {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
