package models

import "time"

// FileHash records the content hash a path was last indexed with, so the
// pipeline's incremental-reindex skip check can tell whether a file
// changed since the previous pass.
type FileHash struct {
	Path        string    `json:"path"`
	Hash        string    `json:"hash"`
	LastIndexed time.Time `json:"last_indexed"`
	ChunkCount  int       `json:"chunk_count"`
}

// FileHashCache is the on-disk shape of one root's tracked file hashes.
type FileHashCache struct {
	Root      string              `json:"root"`
	Hashes    map[string]FileHash `json:"hashes"`
	UpdatedAt time.Time           `json:"updated_at"`
}
