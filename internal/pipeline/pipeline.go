// Package pipeline orchestrates the end-to-end indexing flow: initial
// directory walk, per-file chunk/embed/upsert, and draining the watcher's
// change-event stream — keeping the vector index in sync with a working
// tree, generalized from the teacher's internal/indexer.Indexer. An
// optional file-hash cache (internal/cache.FileHashManager) lets
// processOneFile skip files whose content hasn't changed since the last
// pass, the way the teacher's doIndex gates reprocessing on
// cfg.Indexing.Incremental.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/forge-indexer/forge-indexer/internal/cache"
	"github.com/forge-indexer/forge-indexer/internal/chunker"
	"github.com/forge-indexer/forge-indexer/internal/embeddings"
	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/vectorindex"
	"github.com/forge-indexer/forge-indexer/internal/watcher"
	"github.com/forge-indexer/forge-indexer/pkg/config"
	"github.com/forge-indexer/forge-indexer/pkg/ignore"
)

// Pipeline keeps a vector-index collection in sync with a watched subtree.
type Pipeline struct {
	cfg        *config.Config
	chunker    *chunker.Chunker
	embedder   embeddings.Embedder
	index      vectorindex.Index
	matcher    *ignore.Matcher
	iterator   Iterator
	sem        *semaphore.Weighted
	collection string
	logger     *slog.Logger
	hashes     *cache.FileHashManager

	watcherMux sync.Mutex
	watch      *watcher.Watcher

	statsMux sync.RWMutex
	stats    models.PipelineStats
}

// New constructs all collaborators for cfg, queries the embedder's
// dimension once, and ensures the vector-index collection matches it. If
// the collection already exists with a different dimension it is dropped
// and recreated (see SPEC_FULL.md §4.3 for the acknowledged destructive
// behavior).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	emb, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return nil, err
	}
	idx, err := vectorindex.NewQdrantIndex(cfg.VectorDB.URL, logger)
	if err != nil {
		return nil, err
	}
	p := NewWithCollaborators(cfg, chunker.New(cfg.Chunking), emb, idx, logger)
	if err := p.ensureCollection(ctx); err != nil {
		return nil, err
	}
	hashes, err := cache.NewFileHashManager(cfg.Cache.Directory)
	if err != nil {
		return nil, err
	}
	p.hashes = hashes
	return p, nil
}

// NewWithCollaborators builds a Pipeline from already-constructed
// collaborators, bypassing network-backed construction. New calls it
// after building the real Embedder/Index; tests call it with in-memory
// doubles.
func NewWithCollaborators(cfg *config.Config, ck *chunker.Chunker, emb embeddings.Embedder, idx vectorindex.Index, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := int64(cfg.Indexing.MaxConcurrentFiles)
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		cfg:        cfg,
		chunker:    ck,
		embedder:   emb,
		index:      idx,
		matcher:    ignore.NewMatcher(cfg.Ignore.AllowExtensions),
		iterator:   dirIterator{},
		sem:        semaphore.NewWeighted(concurrency),
		collection: cfg.VectorDB.CollectionName(),
		logger:     logger,
	}
}

func (p *Pipeline) ensureCollection(ctx context.Context) error {
	dim := p.embedder.Dimension()
	if err := p.index.EnsureCollection(ctx, p.collection, dim, p.cfg.VectorDB.DistanceMetric); err != nil {
		return fmt.Errorf("%w: ensure collection %s: %v", models.ErrConfiguration, p.collection, err)
	}
	p.logger.Info("collection ready", "collection", p.collection, "dimension", dim)
	return nil
}

// SetHashManager wires a file-hash cache into the pipeline for
// incremental-reindex skip checks. Exercised directly by tests that want
// to exercise the skip path against a temp-directory cache without going
// through New's network-backed construction.
func (p *Pipeline) SetHashManager(hashes *cache.FileHashManager) {
	p.hashes = hashes
}

// LoadHashCache loads the persisted file-hash cache for root, enabling
// the incremental-reindex skip check in processOneFile for the
// remainder of this pipeline's lifetime. A failure to load is
// non-fatal: the pipeline falls back to reprocessing every file, the
// same as if Indexing.Incremental were never set.
func (p *Pipeline) LoadHashCache(root string) error {
	if p.hashes == nil {
		return nil
	}
	return p.hashes.Load(root)
}

// SaveHashCache persists the current file-hash cache, if one is loaded.
func (p *Pipeline) SaveHashCache() error {
	if p.hashes == nil || !p.hashes.Loaded() {
		return nil
	}
	return p.hashes.Save()
}

// incrementalSkipActive reports whether processOneFile should consult
// the file-hash cache: the config flag is set and a cache has actually
// been loaded (LoadHashCache is a no-op absent that, so tests and
// callers that never load a cache keep reprocessing every file, per the
// teacher's own incremental/forceReindex gating).
func (p *Pipeline) incrementalSkipActive() bool {
	return p.cfg.Indexing.Incremental && p.hashes != nil && p.hashes.Loaded()
}

// StartWatching fails if path does not exist, registers a recursive
// subscription, and leaves the watcher ready for ProcessEvents to drain.
func (p *Pipeline) StartWatching(ctx context.Context, path string) error {
	w, err := watcher.New()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, path); err != nil {
		return err
	}
	p.watcherMux.Lock()
	p.watch = w
	p.watcherMux.Unlock()
	return nil
}

// Stop releases the watcher's OS subscriptions, if any are held.
func (p *Pipeline) Stop() error {
	p.watcherMux.Lock()
	defer p.watcherMux.Unlock()
	if p.watch == nil {
		return nil
	}
	err := p.watch.Stop()
	p.watch = nil
	return err
}

// ProcessFile implements the per-file processing contract: read, detect
// language, hash, chunk, batch-embed, upsert. The outer
// max_concurrent_files semaphore is acquired at the start here and
// released on completion, success or error. When a file-hash cache has
// been loaded via LoadHashCache and Indexing.Incremental is set, a file
// whose revision hash matches its last-indexed hash is skipped entirely
// (no chunk/embed/upsert, no stats change).
func (p *Pipeline) ProcessFile(ctx context.Context, path string) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: acquire semaphore: %v", models.ErrInternal, err)
	}
	defer p.sem.Release(1)
	return p.processOneFile(ctx, path)
}

func (p *Pipeline) processOneFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		p.countError()
		return fmt.Errorf("%w: read %s: %v", models.ErrFileRead, path, err)
	}
	if !utf8.Valid(content) {
		p.countError()
		return fmt.Errorf("%w: %s is not valid UTF-8", models.ErrFileRead, path)
	}

	language := chunker.DetectLanguage(path)
	sum := sha256.Sum256(content)
	revision := hex.EncodeToString(sum[:])

	if p.incrementalSkipActive() && !p.hashes.NeedsReindex(path, revision) {
		return nil
	}

	chunks, err := p.chunker.ChunkFile(path, content, language, revision)
	if err != nil {
		p.countError()
		return fmt.Errorf("%w: chunk %s: %v", models.ErrChunking, path, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Code
	}

	offset := 0
	for _, batch := range embeddings.Batch(texts, p.cfg.Indexing.BatchSize) {
		vectors, err := p.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			p.countError()
			return fmt.Errorf("%w: embed %s: %v", models.ErrEmbedding, path, err)
		}
		if len(vectors) != len(batch) {
			p.countError()
			return fmt.Errorf("%w: embedder returned %d vectors for %d texts in %s",
				models.ErrEmbedding, len(vectors), len(batch), path)
		}

		for i, vector := range vectors {
			c := chunks[offset+i]
			payload := models.Payload{
				Path:    c.Path,
				Lang:    c.Language,
				Rev:     c.Revision,
				Size:    c.ByteSize,
				Code:    c.Code,
				Branch:  c.Revision,
				Symbol:  c.Symbol,
				Summary: c.Summary,
				ChunkID: c.ID,
			}
			pointID := vectorindex.PointID(c.ID)
			if err := p.index.Upsert(ctx, p.collection, pointID, vector, payload); err != nil {
				p.countError()
				return fmt.Errorf("%w: upsert %s: %v", models.ErrVectorIndex, path, err)
			}
			p.statsMux.Lock()
			p.stats.ChunksCreated++
			p.stats.EmbeddingsGenerated++
			p.statsMux.Unlock()
		}
		offset += len(batch)
	}

	p.statsMux.Lock()
	p.stats.FilesProcessed++
	p.stats.BytesProcessed += uint64(len(content))
	p.statsMux.Unlock()

	if p.incrementalSkipActive() {
		p.hashes.Update(path, revision, len(chunks))
	}
	return nil
}

func (p *Pipeline) countError() {
	p.statsMux.Lock()
	p.stats.ErrorsEncountered++
	p.statsMux.Unlock()
}

// FileResult is one outcome from ProcessFiles.
type FileResult struct {
	Path string
	Err  error
}

// ProcessFiles schedules ProcessFile for each path with bounded
// concurrency (enforced by the shared semaphore inside ProcessFile) and
// gathers every outcome; it never aborts early on the first error.
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = FileResult{Path: path, Err: p.ProcessFile(ctx, path)}
		}(i, path)
	}
	wg.Wait()
	return results
}

// ProcessEvents drains the watcher's event stream until it closes or ctx
// is canceled, dispatching ProcessFile for each eligible path. A single
// file's error is logged and counted, never escapes this loop: this
// never terminates on a single file's error.
func (p *Pipeline) ProcessEvents(ctx context.Context) error {
	p.watcherMux.Lock()
	w := p.watch
	p.watcherMux.Unlock()
	if w == nil {
		return fmt.Errorf("%w: process_events called before start_watching", models.ErrInternal)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !p.matcher.IsEligible(ev.Path) {
				continue
			}
			if err := p.ProcessFile(ctx, ev.Path); err != nil {
				p.logger.Error("process_file failed", "path", ev.Path, "op", ev.Op.String(), "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				continue
			}
			p.logger.Error("watcher error", "error", err)
		}
	}
}

// GetStats returns a point-in-time copy of the monotonic counters.
func (p *Pipeline) GetStats() models.PipelineStats {
	p.statsMux.RLock()
	defer p.statsMux.RUnlock()
	return p.stats
}

// ResetStats zeroes all counters.
func (p *Pipeline) ResetStats() {
	p.statsMux.Lock()
	defer p.statsMux.Unlock()
	p.stats = models.PipelineStats{}
}

// CollectFilesFromDirectory enumerates candidate paths under root via the
// configured Iterator and returns those eligible under the ignore filter.
func (p *Pipeline) CollectFilesFromDirectory(root string) ([]string, error) {
	var files []string
	err := p.iterator.Walk(root, func(path string) error {
		if p.matcher.IsEligible(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: collect_files_from_directory: %v", models.ErrInternal, err)
	}
	return files, nil
}

// CollectionName returns the namespace-prefixed collection this pipeline
// manages.
func (p *Pipeline) CollectionName() string { return p.collection }

// Embedder exposes the pipeline's Embedder collaborator, so callers (the
// CLI's index command, a retriever built alongside the pipeline) can
// share it rather than constructing a second one.
func (p *Pipeline) Embedder() embeddings.Embedder { return p.embedder }

// Index exposes the pipeline's vector-index collaborator, for the same
// reason as Embedder.
func (p *Pipeline) Index() vectorindex.Index { return p.index }
