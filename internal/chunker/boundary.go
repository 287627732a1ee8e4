package chunker

import (
	"regexp"
	"strings"
)

// boundaryPatterns are per-language regexes matching a line that opens a
// top-level symbol or import/module boundary. Only isBoundaryLine reads
// them: the fallback window snap uses isBlankOrCommentLine, and the AST
// path cuts on tree-sitter node types.
var boundaryPatterns = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`^\s*func\s+\w+`),
		regexp.MustCompile(`^\s*func\s*\([^)]+\)\s*\w+`),
		regexp.MustCompile(`^\s*type\s+\w+\s+(struct|interface)`),
		regexp.MustCompile(`^\s*(const|var)\s+\w+`),
		regexp.MustCompile(`^\s*import\s*\(`),
	},
	"java": {
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?class\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?interface\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?enum\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?[\w<>\[\]]+\s+\w+\s*\([^)]*\)\s*\{?`),
		regexp.MustCompile(`^\s*@\w+`),
		regexp.MustCompile(`^\s*import\s+`),
	},
	"javascript": {
		regexp.MustCompile(`^\s*export\s+(default\s+)?function\s+\w+`),
		regexp.MustCompile(`^\s*export\s+(default\s+)?class\s+\w+`),
		regexp.MustCompile(`^\s*export\s+(const|let|var)\s+\w+`),
		regexp.MustCompile(`^\s*(async\s+)?function\s+\w+`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*(const|let|var)\s+\w+\s*=\s*(async\s+)?\([^)]*\)\s*=>`),
		regexp.MustCompile(`^\s*(import|require)\s*[\(']`),
	},
	"typescript": {
		regexp.MustCompile(`^\s*export\s+(default\s+)?function\s+\w+`),
		regexp.MustCompile(`^\s*export\s+(default\s+)?class\s+\w+`),
		regexp.MustCompile(`^\s*export\s+(interface|type)\s+\w+`),
		regexp.MustCompile(`^\s*export\s+(const|let|var)\s+\w+`),
		regexp.MustCompile(`^\s*(async\s+)?function\s+\w+`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*interface\s+\w+`),
		regexp.MustCompile(`^\s*type\s+\w+\s*=`),
		regexp.MustCompile(`^\s*(const|let|var)\s+\w+\s*=\s*(async\s+)?\([^)]*\)\s*=>`),
		regexp.MustCompile(`^\s*import\s+`),
	},
	"python": {
		regexp.MustCompile(`^\s*def\s+\w+`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*async\s+def\s+\w+`),
		regexp.MustCompile(`^\s*@\w+`),
		regexp.MustCompile(`^\s*(import|from)\s+`),
	},
	"rust": {
		regexp.MustCompile(`^\s*(pub\s+)?fn\s+\w+`),
		regexp.MustCompile(`^\s*(pub\s+)?struct\s+\w+`),
		regexp.MustCompile(`^\s*(pub\s+)?enum\s+\w+`),
		regexp.MustCompile(`^\s*(pub\s+)?trait\s+\w+`),
		regexp.MustCompile(`^\s*(pub\s+)?impl\s+`),
		regexp.MustCompile(`^\s*(pub\s+)?mod\s+\w+`),
		regexp.MustCompile(`^\s*use\s+`),
	},
	"c": {
		regexp.MustCompile(`^\s*\w+\s+\w+\s*\([^)]*\)\s*\{?`),
		regexp.MustCompile(`^\s*struct\s+\w+`),
		regexp.MustCompile(`^\s*typedef\s+`),
		regexp.MustCompile(`^\s*#include\s+`),
	},
	"cpp": {
		regexp.MustCompile(`^\s*\w+\s+\w+::\w+\s*\([^)]*\)`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*struct\s+\w+`),
		regexp.MustCompile(`^\s*namespace\s+\w+`),
		regexp.MustCompile(`^\s*template\s*<`),
		regexp.MustCompile(`^\s*#include\s+`),
	},
	"ruby": {
		regexp.MustCompile(`^\s*def\s+\w+`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*module\s+\w+`),
		regexp.MustCompile(`^\s*require\s+`),
	},
}

var defaultBoundaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*function\s+\w+`),
	regexp.MustCompile(`^\s*class\s+\w+`),
	regexp.MustCompile(`^\s*def\s+\w+`),
}

// isBoundaryLine reports whether line opens a top-level symbol, import
// block, or other semantic boundary for language. Blank lines and
// comment-only lines are also treated as boundaries — they're always
// safe places to snap a fallback window.
func isBoundaryLine(line, language string) bool {
	if isBlankOrCommentLine(line, language) {
		return true
	}
	patterns, ok := boundaryPatterns[language]
	if !ok {
		patterns = defaultBoundaryPatterns
	}
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// isBlankOrCommentLine reports whether line is empty/whitespace-only or a
// single-line comment for language — the two safe places the fallback
// path snaps a window boundary to.
func isBlankOrCommentLine(line, language string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	switch language {
	case "python", "ruby":
		return strings.HasPrefix(trimmed, "#")
	default:
		return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*")
	}
}
