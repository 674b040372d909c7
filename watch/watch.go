// Package watch turns filesystem notifications into the two kinds of change
// the tree cares about: a directory whose listing may have changed, and a
// selected file whose content may have changed.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type EventKind int

const (
	DirChanged EventKind = iota
	FileChanged
)

func (k EventKind) String() string {
	if k == FileChanged {
		return "file"
	}
	return "dir"
}

// Event is delivered at least once per change and may be spurious.
type Event struct {
	Path string
	Kind EventKind
}

// Watcher keeps an fsnotify watch on the union of a directory set and a file
// set. Both sets are replaced wholesale; only the difference is applied.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	events chan Event

	mu      sync.Mutex
	dirs    map[string]bool
	files   map[string]bool
	watched map[string]bool
}

func New(logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	return &Watcher{
		fsw:     fsw,
		logger:  logger,
		events:  make(chan Event, 64),
		dirs:    map[string]bool{},
		files:   map[string]bool{},
		watched: map[string]bool{},
	}, nil
}

// Events returns the channel Run delivers to.
func (w *Watcher) Events() <-chan Event { return w.events }

// SetDirs replaces the watched directory set.
func (w *Watcher) SetDirs(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs = toSet(paths)
	w.syncLocked()
}

// SetFiles replaces the watched file set.
func (w *Watcher) SetFiles(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = toSet(paths)
	w.syncLocked()
}

// Watched returns the number of paths with an active watch.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func toSet(paths []string) map[string]bool {
	s := make(map[string]bool, len(paths))
	for _, p := range paths {
		s[filepath.Clean(p)] = true
	}
	return s
}

func (w *Watcher) syncLocked() {
	for p := range w.watched {
		if w.dirs[p] || w.files[p] {
			continue
		}
		if err := w.fsw.Remove(p); err != nil {
			w.logger.Debug("failed to remove watch", "path", p, "error", err)
		}
		delete(w.watched, p)
	}
	add := func(p string) {
		if w.watched[p] {
			return
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Debug("failed to add watch", "path", p, "error", err)
			return
		}
		w.watched[p] = true
	}
	for p := range w.dirs {
		add(p)
	}
	for p := range w.files {
		add(p)
	}
}

// translate maps a raw notification to tree events.
func (w *Watcher) translate(ev fsnotify.Event) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Clean(ev.Name)
	parent := filepath.Dir(path)
	var out []Event
	if w.files[path] && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
		out = append(out, Event{Path: path, Kind: FileChanged})
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		if w.dirs[parent] {
			out = append(out, Event{Path: parent, Kind: DirChanged})
		}
		// a watched directory that vanished takes its watch with it
		if w.dirs[path] && !ev.Has(fsnotify.Create) {
			delete(w.watched, path)
		}
	}
	return out
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			for _, e := range w.translate(ev) {
				select {
				case w.events <- e:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
