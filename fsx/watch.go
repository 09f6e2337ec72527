package fsx

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/resource"
)

// EventKind classifies a change observed by a Watcher.
type EventKind string

const (
	EventCreate EventKind = "create"
	EventModify EventKind = "modify"
	EventRemove EventKind = "remove"
)

// WatchEvent carries one batch of changes of the same kind, coalesced per
// scan pass.
type WatchEvent struct {
	Kind  EventKind
	Paths []string
}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Recursive watches directories and everything beneath them.
	Recursive bool
	// Interval paces change scans. Zero means 250ms.
	Interval time.Duration
}

// Watcher observes a set of paths for changes by comparing periodic scans.
// It holds a Rid like every other open resource.
type Watcher struct {
	rid       resource.Rid
	table     *resource.Table
	events    chan WatchEvent
	cancel    context.CancelFunc
	limiter   *rate.Limiter
	paths     []string
	recursive bool
	prev      map[string]fileSig
	closed    atomic.Bool
}

type fileSig struct {
	size  int64
	mtime int64
	mode  iofs.FileMode
}

// Watch starts observing the given paths. Each path needs read capability.
func (s *FS) Watch(paths []string, opts WatchOptions) (w *Watcher, err error) {
	done := s.begin("watch_fs")
	defer func() { done(err) }()

	if len(paths) == 0 {
		return nil, errs.New(errs.InvalidData, "watch_fs").WithDetail("no paths to watch")
	}

	roots := make([]string, len(paths))
	for i, p := range paths {
		abs, checkErr := s.checkRead("watch_fs", p)
		if checkErr != nil {
			return nil, checkErr
		}
		roots[i] = abs
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	w = &Watcher{
		table:     s.table,
		events:    make(chan WatchEvent, 16),
		cancel:    cancel,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		paths:     roots,
		recursive: opts.Recursive,
	}
	w.prev = w.scan()
	if s.table != nil {
		w.rid = s.table.Add(w)
	}

	go w.run(ctx)
	return w, nil
}

// Rid returns the watcher's resource ID.
func (w *Watcher) Rid() resource.Rid { return w.rid }

// Kind implements resource.Resource.
func (w *Watcher) Kind() resource.Kind { return resource.KindFsWatcher }

// Events returns the change event channel. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan WatchEvent { return w.events }

// Close stops the watcher and removes it from the resource table.
func (w *Watcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	w.cancel()
	if w.table != nil {
		w.table.Remove(w.rid)
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	for {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		cur := w.scan()
		var created, modified, removed []string

		for path, sig := range cur {
			old, ok := w.prev[path]
			switch {
			case !ok:
				created = append(created, path)
			case old != sig:
				modified = append(modified, path)
			}
		}
		for path := range w.prev {
			if _, ok := cur[path]; !ok {
				removed = append(removed, path)
			}
		}
		w.prev = cur

		for _, batch := range []struct {
			kind  EventKind
			paths []string
		}{
			{EventCreate, created},
			{EventModify, modified},
			{EventRemove, removed},
		} {
			if len(batch.paths) == 0 {
				continue
			}
			sort.Strings(batch.paths)
			select {
			case w.events <- WatchEvent{Kind: batch.kind, Paths: batch.paths}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// scan snapshots the signature of every watched path.
func (w *Watcher) scan() map[string]fileSig {
	out := make(map[string]fileSig)
	for _, root := range w.paths {
		fi, err := os.Lstat(root)
		if err != nil {
			continue
		}
		if !fi.IsDir() {
			out[root] = sigOf(fi)
			continue
		}
		if w.recursive {
			_ = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if info, infoErr := d.Info(); infoErr == nil {
					out[path] = sigOf(info)
				}
				return nil
			})
			continue
		}
		out[root] = sigOf(fi)
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if info, infoErr := e.Info(); infoErr == nil {
				out[filepath.Join(root, e.Name())] = sigOf(info)
			}
		}
	}
	return out
}

func sigOf(fi iofs.FileInfo) fileSig {
	return fileSig{
		size:  fi.Size(),
		mtime: fi.ModTime().UnixNano(),
		mode:  fi.Mode(),
	}
}
