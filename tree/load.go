package tree

import (
	"slices"

	"github.com/SchwarzschildX/PromptGen/ignore"
)

// Load materializes the immediate children of a directory. It is a no-op for
// files and for directories that are already loaded. A listing failure leaves
// the directory loaded and empty; the failure is kept on the node (ListErr).
// New children are filtered at once, so a file the current filter hides is
// never selectable.
func (t *Tree) Load(n *Node) {
	if n.kind != Directory || n.load == Loaded {
		return
	}
	t.load(n)
	t.rollup(n)
	t.RecomputeVisibility()
}

func (t *Tree) load(n *Node) {
	listing := list(t.fs, n.path)
	n.load = Loaded
	n.listErr = listing.Err
	n.children = nil
	if listing.Failed() {
		t.logger.Debug("directory listing failed, treating as empty", "path", n.path, "error", listing.Err)
		return
	}

	n.children = make([]*Node, 0, len(listing.Names))
	for _, name := range listing.Names {
		n.children = append(n.children, t.newChild(n, name))
	}
	sortChildren(n)
	t.readIgnores(n, listing.Names)
}

// readIgnores attaches the directory's own .gitignore patterns, if any.
func (t *Tree) readIgnores(n *Node, names []string) {
	n.ignores = nil
	if t.gitignoreFS == nil || !slices.Contains(names, ".gitignore") {
		return
	}
	ps, err := ignore.ReadDir(t.gitignoreFS, n.path)
	if err != nil {
		t.logger.Debug("failed to read gitignore", "path", n.path, "error", err)
		return
	}
	n.ignores = ps
}

// Expand marks a directory as expanded. An unloaded directory is loaded; an
// already loaded one is re-synchronized with the disk, since changes that
// happened while it was not watched were missed.
func (t *Tree) Expand(n *Node) {
	if n.kind != Directory {
		return
	}
	if n.load == Loaded {
		t.reconcile(n)
	} else {
		t.load(n)
		t.rollup(n)
	}
	n.expanded = true
	t.RecomputeVisibility()
}

// Collapse clears the expanded flag. Children stay materialized.
func (t *Tree) Collapse(n *Node) {
	n.expanded = false
}

// WatchedDirs derives the set of directories that need a filesystem watch:
// every loaded, expanded directory whose ancestors are all expanded.
func (t *Tree) WatchedDirs() []string {
	var dirs []string
	t.Walk(func(n *Node) bool {
		if n.kind != Directory || !n.expanded || n.load != Loaded {
			return false
		}
		dirs = append(dirs, n.path)
		return true
	})
	return dirs
}

// ExpandedPaths returns the paths of all expanded directories, including
// those hidden under a collapsed ancestor, for persisting expansion state.
func (t *Tree) ExpandedPaths() []string {
	var paths []string
	t.Walk(func(n *Node) bool {
		if n.kind == Directory && n.expanded {
			paths = append(paths, n.path)
		}
		return true
	})
	return paths
}
