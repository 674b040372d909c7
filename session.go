package promptgen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SchwarzschildX/PromptGen/assemble"
	"github.com/SchwarzschildX/PromptGen/internal/debounce"
	"github.com/SchwarzschildX/PromptGen/internal/settings"
	"github.com/SchwarzschildX/PromptGen/tree"
	"github.com/SchwarzschildX/PromptGen/watch"
)

// ErrClosed is returned by session calls made after Run has returned.
var ErrClosed = errors.New("session closed")

// Watcher is the notification source a session keeps in sync with the tree.
type Watcher interface {
	SetDirs(paths []string)
	SetFiles(paths []string)
	Events() <-chan watch.Event
}

// Session owns a tree, the prompt and the current artifact. Everything runs
// on the goroutine executing Run; the exported methods post work to it and
// wait for the result, so they are safe to call from anywhere.
type Session struct {
	tree      *tree.Tree
	assembler *assemble.Assembler
	watcher   Watcher
	logger    *slog.Logger
	debouncer *debounce.Debouncer

	ops     chan func()
	fire    chan struct{}
	updates chan assemble.Artifact
	done    chan struct{}

	// owned by the Run goroutine
	base       tree.Filter
	prompt     string
	filterText string
	artifact   assemble.Artifact
	version    int
}

// NewSession creates a session over t. The filter t starts with is the base
// that extension and hide settings are layered on. watcher may be nil.
func NewSession(t *tree.Tree, asm *assemble.Assembler, watcher Watcher, delay time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		tree:      t,
		assembler: asm,
		watcher:   watcher,
		logger:    logger,
		ops:       make(chan func()),
		fire:      make(chan struct{}, 1),
		updates:   make(chan assemble.Artifact, 1),
		done:      make(chan struct{}),
		base:      t.Filter(),
	}
	s.debouncer = debounce.New(delay, func() {
		select {
		case s.fire <- struct{}{}:
		default:
		}
	})
	return s
}

// Run serves the session until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.debouncer.Stop()

	var events <-chan watch.Event
	if s.watcher != nil {
		events = s.watcher.Events()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op := <-s.ops:
			op()
		case <-s.fire:
			s.recompute()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handle(ev)
		}
	}
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// Updates delivers each new artifact. Only the latest one is kept when the
// reader falls behind.
func (s *Session) Updates() <-chan assemble.Artifact { return s.updates }

func (s *Session) handle(ev watch.Event) {
	switch ev.Kind {
	case watch.DirChanged:
		if s.tree.Reconcile(ev.Path) {
			s.logger.Debug("directory changed", "path", ev.Path)
			s.syncDirs()
			s.schedule()
		}
	case watch.FileChanged:
		s.assembler.Invalidate(ev.Path)
		if s.tree.ReconcileFile(ev.Path) {
			s.logger.Debug("selected file changed", "path", ev.Path)
			s.schedule()
		}
	}
}

func (s *Session) schedule() { s.debouncer.Trigger() }

func (s *Session) syncDirs() {
	if s.watcher != nil {
		s.watcher.SetDirs(s.tree.WatchedDirs())
	}
}

func (s *Session) recompute() {
	files := s.tree.SelectedPaths()
	s.artifact = s.assembler.Assemble(s.prompt, files)
	s.version++
	if s.watcher != nil {
		s.watcher.SetFiles(files)
	}
	s.logger.Debug("artifact rebuilt", "files", len(s.artifact.Files), "skipped", len(s.artifact.Skipped), "version", s.version)

	select {
	case <-s.updates:
	default:
	}
	s.updates <- s.artifact
}

func (s *Session) applyFilter(text string, hideDot, hideDunder bool) {
	s.filterText = text
	f := s.base
	f.Extensions = tree.ParseExtensions(text)
	f.HideDot = hideDot
	f.HideDunder = hideDunder
	s.tree.SetFilter(f)
}

// Toggle flips the checkbox at path: Checked becomes Unchecked, anything
// else becomes Checked. It reports whether the node was found.
func (s *Session) Toggle(path string) (found bool, err error) {
	err = s.do(func() {
		n := s.tree.Find(path)
		if n == nil {
			return
		}
		found = true
		s.tree.SetChecked(n, n.CheckState() != tree.Checked)
		s.syncDirs()
		s.schedule()
	})
	return found, err
}

// SetChecked checks or unchecks path, loading its ancestors on the way.
func (s *Session) SetChecked(path string, checked bool) (found bool, err error) {
	err = s.do(func() {
		n := s.tree.Lookup(path)
		if n == nil {
			return
		}
		found = true
		s.tree.SetChecked(n, checked)
		s.syncDirs()
		s.schedule()
	})
	return found, err
}

// Expand expands the directory at path.
func (s *Session) Expand(path string) error {
	return s.do(func() {
		if n := s.tree.Find(path); n != nil {
			s.tree.Expand(n)
			s.syncDirs()
			s.schedule()
		}
	})
}

// Collapse collapses the directory at path.
func (s *Session) Collapse(path string) error {
	return s.do(func() {
		if n := s.tree.Find(path); n != nil {
			s.tree.Collapse(n)
			s.syncDirs()
		}
	})
}

func (s *Session) SetPrompt(prompt string) error {
	return s.do(func() {
		s.prompt = prompt
		s.schedule()
	})
}

// SetFilter replaces the extension allow-list and hide rules.
func (s *Session) SetFilter(extensions string, hideDot, hideDunder bool) error {
	return s.do(func() {
		s.applyFilter(extensions, hideDot, hideDunder)
		s.schedule()
	})
}

// Rows snapshots what a tree view shows.
func (s *Session) Rows() (rows []tree.Row, err error) {
	err = s.do(func() { rows = s.tree.Rows() })
	return rows, err
}

// SelectedPaths returns the checked, visible files in display order.
func (s *Session) SelectedPaths() (paths []string, err error) {
	err = s.do(func() { paths = s.tree.SelectedPaths() })
	return paths, err
}

// Artifact returns the latest artifact without waiting for a pending
// rebuild.
func (s *Session) Artifact() (art assemble.Artifact, err error) {
	err = s.do(func() { art = s.artifact })
	return art, err
}

// Recompute rebuilds the artifact now, cancelling a pending rebuild.
func (s *Session) Recompute() (art assemble.Artifact, err error) {
	err = s.do(func() { art = s.rebuildNow() })
	return art, err
}

// rebuildNow replaces a pending rebuild, including one whose timer already
// fired but has not been handled yet.
func (s *Session) rebuildNow() assemble.Artifact {
	s.debouncer.Stop()
	select {
	case <-s.fire:
	default:
	}
	s.recompute()
	return s.artifact
}

// Restore applies saved state through the lazy loader: expanded directories
// first, then checked paths. Paths that no longer exist are skipped.
func (s *Session) Restore(st settings.State) error {
	return s.do(func() {
		s.prompt = st.Prompt
		s.applyFilter(st.Filter, st.HideDot, st.HideDunder)
		missing := 0
		for _, p := range st.Expanded {
			if !s.tree.ExpandPath(p) {
				missing++
			}
		}
		for _, p := range st.Checked {
			if !s.tree.CheckPath(p) {
				missing++
			}
		}
		if missing > 0 {
			s.logger.Info("some saved paths no longer exist", "missing", missing)
		}
		s.syncDirs()
		s.schedule()
	})
}

// State captures what Restore needs to rebuild this session.
func (s *Session) State() (st settings.State, err error) {
	err = s.do(func() {
		f := s.tree.Filter()
		st = settings.State{
			Prompt:     s.prompt,
			Filter:     s.filterText,
			HideDot:    f.HideDot,
			HideDunder: f.HideDunder,
			Checked:    s.tree.CheckedPaths(),
			Expanded:   s.tree.ExpandedPaths(),
		}
	})
	return st, err
}
