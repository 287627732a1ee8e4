// Package watcher emits a raw, ordered stream of file-change events for
// a rooted subtree: events must be processed in the order received with
// no deduplication, so there is no debounce timer or accumulated-files
// map here, only a direct channel of Events.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

// Op identifies the kind of file-change event.
type Op int

const (
	OpCreate Op = iota
	OpModify
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event is one file-change notification.
type Event struct {
	Path string
	Op   Op
}

// maxDirectories and maxDepth bound how much of a tree one Watcher will
// recursively subscribe to: a runaway symlink loop or a directory with
// more entries than any real repository should not be allowed to
// register subscriptions forever.
const (
	maxDirectories = 10000
	maxDepth       = 64
)

// Watcher emits a raw event stream for a recursively-registered subtree.
type Watcher struct {
	fsw         *fsnotify.Watcher
	events      chan Event
	errs        chan error
	stopOnce    sync.Once
	dirCount    int
	dirCountMux sync.Mutex
}

// New builds a Watcher with no subtree registered yet; call Start to
// register root and begin streaming.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	return &Watcher{
		fsw:    fsw,
		events: make(chan Event, 256),
		errs:   make(chan error, 16),
	}, nil
}

// Start fails if root does not exist; otherwise it registers a recursive
// subscription on root and begins
// translating fsnotify events onto the Events channel until ctx is
// canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: start_watching: %v", models.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: start_watching: %s is not a directory", models.ErrConfiguration, root)
	}
	if err := w.addRecursively(root, 0); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

// Events is the ordered event stream. Two events for the same path are
// never deduplicated; the pipeline re-reads and re-upserts on every
// event, converging to the final state.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors surfaces fsnotify-level errors (e.g. a watched directory
// removed out from under the watcher). Non-fatal: the stream continues.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Stop releases the OS subscriptions and closes the event stream.
// Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	defer close(w.errs)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursively(ev.Name, 0)
				}
			}
			op, ok := translateOp(ev.Op)
			if !ok {
				continue
			}
			select {
			case w.events <- Event{Path: ev.Name, Op: op}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func translateOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return OpCreate, true
	case op&fsnotify.Write != 0:
		return OpModify, true
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return OpDelete, true
	default:
		return 0, false
	}
}

// addRecursively registers root and every subdirectory beneath it, up to
// maxDepth and maxDirectories, skipping VCS/dependency directories the
// pipeline's own eligibility filter would reject anyway.
func (w *Watcher) addRecursively(root string, depth int) error {
	if depth > maxDepth {
		return nil
	}
	name := filepath.Base(root)
	if name == ".git" || name == "node_modules" || name == "vendor" || name == "target" {
		return nil
	}

	w.dirCountMux.Lock()
	if w.dirCount >= maxDirectories {
		w.dirCountMux.Unlock()
		return fmt.Errorf("%w: directory limit reached (%d)", models.ErrInternal, maxDirectories)
	}
	w.dirCount++
	w.dirCountMux.Unlock()

	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("%w: watch %s: %v", models.ErrInternal, root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		_ = w.addRecursively(filepath.Join(root, entry.Name()), depth+1)
	}
	return nil
}
