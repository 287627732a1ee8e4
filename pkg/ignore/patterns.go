// Package ignore implements the pipeline's file eligibility filter:
// directory reject-list, binary-extension reject-list, system-file
// reject-list, and an extension allow-list with a README-family
// extension-less carve-out.
package ignore

import (
	"path/filepath"
	"strings"
)

// rejectedDirSegments are path components that disqualify a file no
// matter what its extension is.
var rejectedDirSegments = []string{
	"/target/", "/.git/", "/node_modules/", "/vendor/",
	"/.fastembed_cache/", "/debug/",
}

// rejectedExtensions are binary/media extensions, lowercase, without the
// leading dot.
var rejectedExtensions = map[string]bool{
	"exe": true, "dll": true, "so": true, "dylib": true, "a": true, "lib": true,
	"obj": true, "o": true, "bin": true, "class": true, "jar": true, "war": true,
	"ear": true, "zip": true, "tar": true, "gz": true, "bz2": true, "xz": true,
	"7z": true, "rar": true, "pdf": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true, "ppt": true, "pptx": true,
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true, "svg": true,
	"ico": true, "mp3": true, "mp4": true, "avi": true, "mov": true, "wmv": true,
	"flv": true, "db": true, "sqlite": true, "sqlite3": true,
}

var rejectedSystemFiles = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

var readmeFamilyPrefixes = []string{
	"readme", "license", "changelog", "contributing", "authors",
	"install", "news", "todo", "copying",
}

// Matcher decides whether a path is eligible for indexing given a
// configured allow-list of lowercase extensions (without the leading
// dot).
type Matcher struct {
	allowExtensions map[string]bool
}

// NewMatcher builds a Matcher from a configured extension allow-list.
func NewMatcher(allowExtensions []string) *Matcher {
	allow := make(map[string]bool, len(allowExtensions))
	for _, ext := range allowExtensions {
		allow[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Matcher{allowExtensions: allow}
}

// ShouldIgnore returns true if path is NOT eligible for indexing.
func (m *Matcher) ShouldIgnore(path string) bool {
	return !m.IsEligible(path)
}

// IsEligible applies the eligibility rules in order: rejected directory
// segments, rejected system files, rejected binary extensions, then the
// allow-list (with the README-family extension-less carve-out).
func (m *Matcher) IsEligible(path string) bool {
	slashPath := filepath.ToSlash(path)
	if !strings.HasPrefix(slashPath, "/") {
		slashPath = "/" + slashPath
	}
	if !strings.HasSuffix(slashPath, "/") {
		slashPath += "/"
	}
	for _, seg := range rejectedDirSegments {
		if strings.Contains(slashPath, seg) {
			return false
		}
	}

	base := filepath.Base(path)
	if rejectedSystemFiles[base] {
		return false
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "" {
		lowerBase := strings.ToLower(base)
		for _, prefix := range readmeFamilyPrefixes {
			if strings.HasPrefix(lowerBase, prefix) {
				return true
			}
		}
		return false
	}

	if rejectedExtensions[ext] {
		return false
	}

	return m.allowExtensions[ext]
}

// DefaultAllowExtensions returns the default extension allow-list.
func DefaultAllowExtensions() []string {
	return []string{
		"rs", "py", "js", "jsx", "mjs", "cjs", "ts", "tsx", "go", "java",
		"cpp", "cc", "cxx", "hpp", "h", "c", "rb", "css", "scss", "less",
		"md", "txt", "yaml", "yml", "json", "toml",
	}
}
