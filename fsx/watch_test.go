package fsx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hostlayer/hostshim/resource"
)

func waitForEvent(t *testing.T, w *Watcher, kind EventKind, path string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatal("event channel closed")
			}
			if ev.Kind != kind {
				continue
			}
			for _, p := range ev.Paths {
				if p == path {
					return
				}
			}
		case <-deadline:
			t.Fatalf("no %s event for %s", kind, path)
		}
	}
}

func TestWatch_CreateModifyRemove(t *testing.T) {
	dir := t.TempDir()
	fs, table, _ := newTestFS(t, allowDir(dir))

	w, err := fs.Watch([]string{dir}, WatchOptions{Recursive: true, Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, ok := table.GetKind(w.Rid(), resource.KindFsWatcher); !ok {
		t.Fatal("watcher not in resource table")
	}

	path := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, w, EventCreate, path)

	if err := os.WriteFile(path, []byte("a longer payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, w, EventModify, path)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, w, EventRemove, path)
}

func TestWatch_CloseStopsEvents(t *testing.T) {
	dir := t.TempDir()
	fs, table, _ := newTestFS(t, allowDir(dir))

	w, err := fs.Watch([]string{dir}, WatchOptions{Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	rid := w.Rid()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Get(rid); ok {
		t.Fatal("watcher still tracked after close")
	}

	// channel drains and closes
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel never closed")
		}
	}
}

func TestWatch_RequiresPaths(t *testing.T) {
	dir := t.TempDir()
	fs, _, _ := newTestFS(t, allowDir(dir))
	if _, err := fs.Watch(nil, WatchOptions{}); err == nil {
		t.Fatal("expected error")
	}
}
