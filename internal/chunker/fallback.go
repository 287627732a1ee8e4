package chunker

// fallbackChunk implements the fallback path: a sliding window over
// content.lines() with target size Limits.FallbackWindowLines,
// snapping the window's natural end backward to the nearest blank or
// comment line within the last FallbackSnapLines lines of the window,
// so windows tend to break between logical blocks rather than mid-block.
// A window is also shortened, line by line, until it fits within
// Limits.MaxChunkBytes (a single line longer than that still forms its
// own window).
func fallbackChunk(content, language string, limits Limits) []rawChunk {
	window := limits.FallbackWindowLines
	if window <= 0 {
		window = 50
	}
	snap := limits.FallbackSnapLines
	if snap <= 0 {
		snap = 20
	}

	lineOffsets := computeLineOffsets(content)
	totalLines := len(lineOffsets)
	if totalLines == 0 {
		return nil
	}

	var chunks []rawChunk
	start := 0
	for start < totalLines {
		naturalEnd := start + window
		if naturalEnd > totalLines {
			naturalEnd = totalLines
		}
		for limits.MaxChunkBytes > 0 && naturalEnd > start+1 {
			windowEnd := len(content)
			if naturalEnd < totalLines {
				windowEnd = lineOffsets[naturalEnd]
			}
			if windowEnd-lineOffsets[start] <= limits.MaxChunkBytes {
				break
			}
			naturalEnd--
		}
		end := naturalEnd
		if naturalEnd < totalLines {
			end = snapBoundary(content, lineOffsets, start, naturalEnd, snap, language)
		}
		if end <= start {
			end = naturalEnd
		}

		startByte := lineOffsets[start]
		var endByte int
		if end >= totalLines {
			endByte = len(content)
		} else {
			endByte = lineOffsets[end]
		}
		if endByte > startByte {
			chunks = append(chunks, rawChunk{startByte: startByte, endByte: endByte})
		}
		start = end
	}
	return chunks
}

// computeLineOffsets returns, for each line index, the byte offset of
// that line's first byte. Lines are split on '\n'; a trailing partial
// line (no final newline) still gets an entry. A final synthetic offset
// exactly at len(content) (the file ends with a newline) is dropped so
// we don't emit a trailing empty line as its own chunk.
func computeLineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	if len(offsets) > 1 && offsets[len(offsets)-1] == len(content) {
		offsets = offsets[:len(offsets)-1]
	}
	return offsets
}

// snapBoundary looks backward from naturalEnd, within the last snapLines
// lines of [start, naturalEnd), for a blank or comment line and returns
// the line index immediately after it. If none is found, returns
// naturalEnd unchanged.
func snapBoundary(content string, lineOffsets []int, start, naturalEnd, snapLines int, language string) int {
	earliestCheck := naturalEnd - snapLines
	if earliestCheck < start {
		earliestCheck = start
	}
	for i := naturalEnd - 1; i >= earliestCheck; i-- {
		lineStart := lineOffsets[i]
		var lineEnd int
		if i+1 < len(lineOffsets) {
			lineEnd = lineOffsets[i+1]
		} else {
			lineEnd = len(content)
		}
		line := content[lineStart:lineEnd]
		if isBlankOrCommentLine(line, language) {
			return i + 1
		}
	}
	return naturalEnd
}
