// Package cache implements the pipeline's incremental-reindex skip
// check: a JSON-persisted map from file path to the content hash it was
// last indexed with, adapted from the teacher's
// internal/cache.FileHashManager. The pipeline already computes a file's
// SHA-256 revision as part of the per-file processing contract, so this
// package is handed that hash directly rather than re-reading the file
// a second time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

// FileHashManager tracks per-file content hashes across indexing runs.
// Thread-safe: NeedsReindex and Update are called concurrently from the
// pipeline's per-file worker goroutines.
type FileHashManager struct {
	cacheDir string
	mux      sync.RWMutex
	cache    *models.FileHashCache
}

// NewFileHashManager builds a manager rooted at cacheDir, creating the
// directory if it doesn't exist yet. The manager is inert until Load is
// called: NeedsReindex always reports true and Update is a no-op.
func NewFileHashManager(cacheDir string) (*FileHashManager, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache directory: %v", models.ErrConfiguration, err)
	}
	return &FileHashManager{cacheDir: cacheDir}, nil
}

// Load reads the persisted hash cache for root, or starts a fresh one if
// none exists yet.
func (m *FileHashManager) Load(root string) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	data, err := os.ReadFile(m.cachePath(root))
	if os.IsNotExist(err) {
		m.cache = &models.FileHashCache{
			Root:      root,
			Hashes:    make(map[string]models.FileHash),
			UpdatedAt: time.Now(),
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache file: %w", err)
	}

	var loaded models.FileHashCache
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	if loaded.Hashes == nil {
		loaded.Hashes = make(map[string]models.FileHash)
	}
	m.cache = &loaded
	return nil
}

// Save persists the current cache to disk.
func (m *FileHashManager) Save() error {
	m.mux.RLock()
	if m.cache == nil {
		m.mux.RUnlock()
		return fmt.Errorf("no cache loaded")
	}
	snapshot := *m.cache
	snapshot.Hashes = make(map[string]models.FileHash, len(m.cache.Hashes))
	for k, v := range m.cache.Hashes {
		snapshot.Hashes[k] = v
	}
	m.mux.RUnlock()

	snapshot.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	return os.WriteFile(m.cachePath(snapshot.Root), data, 0o644)
}

// Loaded reports whether Load has populated the in-memory cache.
func (m *FileHashManager) Loaded() bool {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.cache != nil
}

// NeedsReindex reports whether path's current revision hash differs from
// the hash it was last indexed with. A path with no loaded cache, or
// with no prior entry, always needs reindexing.
func (m *FileHashManager) NeedsReindex(path, revision string) bool {
	m.mux.RLock()
	defer m.mux.RUnlock()
	if m.cache == nil {
		return true
	}
	cached, ok := m.cache.Hashes[path]
	if !ok {
		return true
	}
	return cached.Hash != revision
}

// Update records path's current revision hash as its last-indexed state.
// No-op if no cache is loaded.
func (m *FileHashManager) Update(path, revision string, chunkCount int) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.cache == nil {
		return
	}
	m.cache.Hashes[path] = models.FileHash{
		Path:        path,
		Hash:        revision,
		LastIndexed: time.Now(),
		ChunkCount:  chunkCount,
	}
}

// cachePath derives a stable cache filename from root, the way the
// teacher namespaces one hash-cache file per indexed repository.
func (m *FileHashManager) cachePath(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(m.cacheDir, fmt.Sprintf("file-hashes-%s.json", hex.EncodeToString(sum[:8])))
}
