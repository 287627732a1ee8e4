package chunker

import "sort"

// mergeSymbolsAndBoundaries subdivides oversized symbol chunks into
// 50-line windows, then fills the gaps left between symbol chunks with
// boundary-cut regions of at least MIN_SPLIT bytes, skipping any
// boundary that overlaps a symbol chunk.
//
// These constants (MAX_CHUNK 2000, MIN_SPLIT 100, 50-line subdivision
// windows) are fixed; the configurable limits from config.ChunkingConfig
// apply afterward, in postProcess's merge-up/drop pass.
func mergeSymbolsAndBoundaries(content string, symbols, boundaries []rawChunk) []rawChunk {
	const maxChunk = 2000
	const minSplit = 100
	const windowLines = 50

	sort.Slice(symbols, func(i, j int) bool { return symbols[i].startByte < symbols[j].startByte })

	var out []rawChunk
	for _, s := range symbols {
		if s.endByte-s.startByte <= maxChunk {
			out = append(out, s)
			continue
		}
		out = append(out, splitByLineWindow(content, s, windowLines)...)
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].startByte < boundaries[j].startByte })
	boundaries = dedupBoundaries(boundaries)

	for i := 0; i < len(boundaries); {
		b := boundaries[i]
		if overlapsAny(b, out) {
			i++
			continue
		}
		// Extend the boundary region forward through consecutive
		// non-overlapping boundaries to accumulate at least minSplit
		// bytes before cutting, per "cutting between consecutive
		// boundary offsets where the span >= MIN_SPLIT".
		end := b.endByte
		j := i + 1
		for end-b.startByte < minSplit && j < len(boundaries) && !overlapsAny(rawChunk{startByte: b.startByte, endByte: boundaries[j].endByte}, out) {
			end = boundaries[j].endByte
			j++
		}
		if end-b.startByte >= minSplit {
			out = append(out, rawChunk{startByte: b.startByte, endByte: end})
		}
		i = j
	}

	sort.Slice(out, func(i, j int) bool { return out[i].startByte < out[j].startByte })
	return out
}

func overlapsAny(c rawChunk, others []rawChunk) bool {
	for _, o := range others {
		if c.startByte < o.endByte && o.startByte < c.endByte {
			return true
		}
	}
	return false
}

func dedupBoundaries(boundaries []rawChunk) []rawChunk {
	seen := make(map[[2]int]bool, len(boundaries))
	out := boundaries[:0:0]
	for _, b := range boundaries {
		key := [2]int{b.startByte, b.endByte}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

// splitByLineWindow subdivides a symbol node's byte range into
// windowLines-line pieces, inheriting the symbol's name on every piece.
func splitByLineWindow(content string, s rawChunk, windowLines int) []rawChunk {
	span := content[s.startByte:s.endByte]
	var pieces []rawChunk
	lineStart := s.startByte
	lines := 0
	for i := 0; i < len(span); i++ {
		if span[i] == '\n' {
			lines++
			if lines >= windowLines {
				end := s.startByte + i + 1
				pieces = append(pieces, rawChunk{startByte: lineStart, endByte: end, symbol: s.symbol})
				lineStart = end
				lines = 0
			}
		}
	}
	if lineStart < s.endByte {
		pieces = append(pieces, rawChunk{startByte: lineStart, endByte: s.endByte, symbol: s.symbol})
	}
	return pieces
}
