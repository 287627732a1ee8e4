package chunker

import (
	"fmt"

	"github.com/forge-indexer/forge-indexer/internal/embeddings"
	"github.com/forge-indexer/forge-indexer/internal/models"
)

// postProcess applies the merge-up and drop passes to an ordered chunk
// list. A file's sole chunk is always retained regardless of size, per
// the drop rule's carve-out.
func postProcess(chunks []models.Chunk, language string, limits Limits) []models.Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	chunks = mergeUp(chunks, limits)

	if len(chunks) == 1 {
		return chunks
	}

	kept := make([]models.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.ByteSize < limits.MinChunkBytes || c.ByteSize > limits.MaxChunkBytes {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		// Every chunk got dropped; retain the first as the file's sole
		// chunk rather than returning an empty list (invariant 1).
		return chunks[:1]
	}
	return kept
}

// mergeUp concatenates an undersized chunk into its successor when they
// share a language and either their combined size stays under 5000 bytes
// or their text similarity exceeds the configured threshold.
func mergeUp(chunks []models.Chunk, limits Limits) []models.Chunk {
	const combinedCeiling = 5000

	out := make([]models.Chunk, 0, len(chunks))
	i := 0
	for i < len(chunks) {
		c := chunks[i]
		if c.ByteSize >= limits.MinChunkBytes || i == len(chunks)-1 {
			out = append(out, c)
			i++
			continue
		}
		next := chunks[i+1]
		if next.Language != c.Language {
			out = append(out, c)
			i++
			continue
		}
		combined := c.ByteSize + next.ByteSize
		if combined < combinedCeiling || textSimilarity(c.Code, next.Code) > limits.MergeUpThreshold {
			merged := models.Chunk{
				Path:      c.Path,
				Language:  c.Language,
				Symbol:    c.Symbol,
				Revision:  c.Revision,
				Code:      c.Code + next.Code,
				StartByte: c.StartByte,
				EndByte:   next.EndByte,
			}
			merged.ByteSize = len(merged.Code)
			chunks[i+1] = merged
			i++
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}

// annotate derives the advisory summary field from symbol kind,
// complexity band, and an advisory tiktoken-go token count. Summaries
// never influence retrieval ranking or chunk boundaries (spec.md §9).
func annotate(c models.Chunk, tokens *embeddings.TokenCounter) string {
	score := complexityScore(c.Code)
	band := complexityBand(score)
	kind := fmt.Sprintf("%s fragment", c.Language)
	if c.Symbol != "" {
		kind = c.Symbol
	}
	if count := tokens.Count(c.Code); count > 0 {
		return fmt.Sprintf("%s (%s complexity, ~%d tokens)", kind, band, count)
	}
	return fmt.Sprintf("%s (%s complexity)", kind, band)
}
