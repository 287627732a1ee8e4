package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func collectEvents(t *testing.T, w *Watcher, timeout time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
}

func TestStart_FailsOnMissingRoot(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background(), filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected an error starting on a missing root")
	}
}

func TestStart_EmitsCreateAndModifyEvents(t *testing.T) {
	root := t.TempDir()

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx, root); err != nil {
		t.Fatalf("Start: %v", err)
	}

	path := filepath.Join(root, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile (modify): %v", err)
	}

	events := collectEvents(t, w, 2*time.Second)
	if len(events) == 0 {
		t.Fatal("expected at least one event for the written file")
	}
	for _, ev := range events {
		if ev.Path != path {
			t.Fatalf("unexpected path in event: %q", ev.Path)
		}
	}
}

func TestStart_RegistersExistingSubdirectoriesRecursively(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx, root); err != nil {
		t.Fatalf("Start: %v", err)
	}

	nested := filepath.Join(sub, "sub.go")
	if err := os.WriteFile(nested, []byte("package pkg\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	events := collectEvents(t, w, 2*time.Second)
	found := false
	for _, ev := range events {
		if ev.Path == nested {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an event for pre-existing subdirectory file, got %+v", events)
	}
}

func TestTranslateOp_MapsFsnotifyOpsToWatcherOps(t *testing.T) {
	if _, ok := translateOp(0); ok {
		t.Fatal("expected no translation for an empty op")
	}
	cases := map[fsnotify.Op]Op{
		fsnotify.Create: OpCreate,
		fsnotify.Write:  OpModify,
		fsnotify.Remove: OpDelete,
		fsnotify.Rename: OpDelete,
	}
	for in, want := range cases {
		got, ok := translateOp(in)
		if !ok || got != want {
			t.Fatalf("translateOp(%v) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
}
