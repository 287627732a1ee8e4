package chunker

import (
	"path/filepath"
	"strings"
)

// language describes one recognized source language: its canonical name,
// the extensions that map to it, and whether the AST chunker has a
// tree-sitter grammar for it. Languages without a grammar (css, text) and
// any unrecognized extension always fall back to the line-window chunker.
type language struct {
	Name       string
	Extensions []string
	HasGrammar bool
}

var languages = []language{
	{Name: "go", Extensions: []string{".go"}, HasGrammar: true},
	{Name: "java", Extensions: []string{".java"}, HasGrammar: true},
	{Name: "javascript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, HasGrammar: true},
	{Name: "typescript", Extensions: []string{".ts", ".tsx"}, HasGrammar: true},
	{Name: "python", Extensions: []string{".py"}, HasGrammar: true},
	{Name: "ruby", Extensions: []string{".rb"}, HasGrammar: true},
	{Name: "rust", Extensions: []string{".rs"}, HasGrammar: true},
	{Name: "c", Extensions: []string{".c", ".h"}, HasGrammar: true},
	{Name: "cpp", Extensions: []string{".cpp", ".cc", ".cxx", ".hpp"}, HasGrammar: true},
	{Name: "css", Extensions: []string{".css", ".scss", ".less"}, HasGrammar: false},
}

// textLanguage is the name assigned to any path whose extension is not in
// the table above (or that has no extension at all).
const textLanguage = "text"

var extToLanguage = buildExtIndex()

func buildExtIndex() map[string]string {
	idx := make(map[string]string)
	for _, l := range languages {
		for _, ext := range l.Extensions {
			idx[ext] = l.Name
		}
	}
	return idx
}

// DetectLanguage returns the canonical language name for path. Unknown or
// missing extensions resolve to "text" — detection never fails.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := extToLanguage[ext]; ok {
		return name
	}
	return textLanguage
}

// hasGrammar reports whether the AST chunker has a tree-sitter grammar
// registered for name.
func hasGrammar(name string) bool {
	for _, l := range languages {
		if l.Name == name {
			return l.HasGrammar
		}
	}
	return false
}
