package chunker

import (
	"regexp"
	"strings"
)

var (
	ifPattern     = regexp.MustCompile(`\bif\b`)
	loopPattern   = regexp.MustCompile(`\b(while|for)\b`)
	switchPattern = regexp.MustCompile(`\b(match|switch)\b`)
)

// complexityScore approximates the per-symbol complexity formula
// (1 + child-count/5 + sum of control-flow weights) from the chunk's
// text rather than its tree-sitter node: by the time post-processing
// runs, raw chunks have already been sliced down to plain byte ranges
// (see rawChunk), so line count stands in for "child-count" and keyword
// occurrences stand in for descendant control-flow nodes. The field is
// advisory only, so a lexical approximation is an acceptable substitute
// for a tree walk.
func complexityScore(code string) float64 {
	lines := strings.Count(code, "\n") + 1
	score := 1.0 + float64(lines)/5.0
	score += float64(len(ifPattern.FindAllString(code, -1))) * 1
	score += float64(len(loopPattern.FindAllString(code, -1))) * 2
	score += float64(len(switchPattern.FindAllString(code, -1))) * 3
	return score
}

// complexityBand buckets a score into a short advisory label.
func complexityBand(score float64) string {
	switch {
	case score < 3:
		return "simple"
	case score < 8:
		return "moderate"
	default:
		return "complex"
	}
}
