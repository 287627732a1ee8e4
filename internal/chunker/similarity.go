package chunker

import "regexp"

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// keywordVocab is the fixed, cross-language keyword set weighed at 0.3
// in the text-similarity score. It intentionally spans
// multiple languages' keywords rather than being per-language, since the
// similarity score only ever compares chunks already known to share one
// language.
var keywordVocab = set(
	"func", "function", "def", "class", "struct", "enum", "interface",
	"trait", "impl", "module", "import", "export", "return", "if", "else",
	"while", "for", "match", "switch", "case", "try", "catch", "throw",
	"async", "await", "public", "private", "protected", "static", "const",
	"let", "var", "new", "this", "self", "fn", "pub", "type", "package",
)

// textSimilarity computes the weighted Jaccard score between two
// chunks: 0.7 * identifier-set Jaccard + 0.3 * keyword-vocabulary
// Jaccard, using lexical token extraction (AST-based identifier
// extraction is reserved for the chunker's own symbol names; once code
// is sliced into text, re-parsing each candidate pair for merge
// decisions isn't worth the cost the fallback heuristic already covers).
func textSimilarity(a, b string) float64 {
	idA, kwA := tokenSets(a)
	idB, kwB := tokenSets(b)
	return 0.7*jaccard(idA, idB) + 0.3*jaccard(kwA, kwB)
}

func tokenSets(text string) (identifiers, keywords map[string]bool) {
	identifiers = make(map[string]bool)
	keywords = make(map[string]bool)
	for _, tok := range identifierPattern.FindAllString(text, -1) {
		if len(tok) < 2 {
			continue
		}
		if keywordVocab[tok] {
			keywords[tok] = true
		} else {
			identifiers[tok] = true
		}
	}
	return identifiers, keywords
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
