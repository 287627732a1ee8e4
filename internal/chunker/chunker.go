// Package chunker turns one file's content into an ordered, non-empty
// list of models.Chunk. It is a pure function of (path, content,
// language, revision): no I/O, no shared mutable state outside the
// parser pool it owns.
//
// Dispatch: a tree-sitter grammar drives semantic chunking when one is
// registered for the language; everything else — including any file the
// AST path judges degenerate — goes through the line-window fallback.
package chunker

import (
	"sync"
	"unicode/utf8"

	"github.com/forge-indexer/forge-indexer/internal/embeddings"
	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/pkg/config"
)

// Limits are the chunker's size thresholds, sourced from
// config.ChunkingConfig so operators can tune them without a rebuild.
type Limits struct {
	MaxChunkBytes       int
	MinChunkBytes       int
	MinSplitBytes       int
	FallbackWindowLines int
	FallbackSnapLines   int
	MergeUpThreshold    float64
}

func limitsFromConfig(cfg config.ChunkingConfig) Limits {
	return Limits{
		MaxChunkBytes:       cfg.MaxChunkBytes,
		MinChunkBytes:       cfg.MinChunkBytes,
		MinSplitBytes:       cfg.MinSplitBytes,
		FallbackWindowLines: cfg.FallbackWindowLines,
		FallbackSnapLines:   cfg.FallbackSnapLines,
		MergeUpThreshold:    cfg.MergeUpSimilarityThreshold,
	}
}

// Chunker is the entry point the pipeline holds. It owns the tree-sitter
// parser pool; parsers are not safe for concurrent use, so every parse is
// serialized behind mux (§5 "parser pool sharing" — gate the whole
// chunker rather than juggle per-call construction).
type Chunker struct {
	mux    sync.Mutex
	ast    *astParsers
	limits Limits
	tokens *embeddings.TokenCounter
}

// New builds a Chunker with tree-sitter grammars for every language
// listed in the language table that has one. The tiktoken-go counter
// used to annotate chunk summaries is best-effort: if the encoding
// fails to load, annotate falls back to reporting no token count
// rather than failing chunking over it.
func New(cfg config.ChunkingConfig) *Chunker {
	tokens, _ := embeddings.NewTokenCounter()
	return &Chunker{
		ast:    newASTParsers(),
		limits: limitsFromConfig(cfg),
		tokens: tokens,
	}
}

// ChunkFile produces the ordered chunk list for one file. content must be
// valid UTF-8; the pipeline is responsible for rejecting non-UTF-8 bytes
// before calling in (§4.1 "errors").
func (c *Chunker) ChunkFile(path string, content []byte, language, revision string) ([]models.Chunk, error) {
	if !utf8.Valid(content) {
		return nil, models.ErrChunking
	}
	text := string(content)
	if text == "" {
		return nil, models.ErrChunking
	}

	var raw []rawChunk
	if hasGrammar(language) {
		c.mux.Lock()
		raw = c.ast.parse(language, text)
		c.mux.Unlock()
	}
	if len(raw) == 0 {
		raw = fallbackChunk(text, language, c.limits)
	}
	if len(raw) == 0 {
		// Degenerate AST result with nothing to fall back to either
		// (e.g. an empty-after-trim file); still guarantee one chunk.
		raw = []rawChunk{{startByte: 0, endByte: len(text)}}
	}

	chunks := make([]models.Chunk, 0, len(raw))
	for _, r := range raw {
		code := text[r.startByte:r.endByte]
		chunks = append(chunks, models.Chunk{
			Path:      path,
			Language:  language,
			Symbol:    r.symbol,
			Revision:  revision,
			ByteSize:  len(code),
			Code:      code,
			StartByte: r.startByte,
			EndByte:   r.endByte,
		})
	}

	chunks = postProcess(chunks, language, c.limits)
	for i := range chunks {
		chunks[i].ID = chunkID(path, chunks[i].StartByte, chunks[i].EndByte, revision)
		chunks[i].Summary = annotate(chunks[i], c.tokens)
	}
	return chunks, nil
}

// rawChunk is the pre-ID, pre-annotation shape produced by the AST and
// fallback paths, before post-processing.
type rawChunk struct {
	startByte int
	endByte   int
	symbol    string
}
