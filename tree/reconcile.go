package tree

import (
	"path/filepath"
	"slices"
)

// Reconcile re-synchronizes a tracked directory with a fresh listing after a
// change notification. Untracked paths, files and unloaded directories are
// ignored, as are notifications that turn out to change nothing. Surviving
// children keep their check and load state; new ones start Unchecked and
// NotLoaded even under a Checked parent, which then rolls up to Partial. A
// child replaced by an entry of the other kind counts as removed and new.
//
// It reports whether the tree changed: children were added or removed, or
// the directory's .gitignore was re-read.
func (t *Tree) Reconcile(path string) bool {
	n := t.Find(path)
	if n == nil || n.kind != Directory || n.load != Loaded {
		t.logger.Debug("ignoring change notification", "path", path)
		return false
	}
	changed := t.reconcile(n)
	if changed {
		t.RecomputeVisibility()
	}
	return changed
}

func (t *Tree) reconcile(n *Node) bool {
	listing := list(t.fs, n.path)
	n.listErr = listing.Err
	if listing.Failed() {
		t.logger.Debug("directory listing failed, treating as empty", "path", n.path, "error", listing.Err)
	}

	fresh := make(map[string]bool, len(listing.Names))
	for _, name := range listing.Names {
		fresh[name] = true
	}

	changed := false
	existing := make(map[string]bool, len(n.children))
	kept := n.children[:0]
	for _, c := range n.children {
		// a name whose kind flipped is dropped here and re-added below
		if fresh[c.name] && t.kindOf(c.path) == c.kind {
			kept = append(kept, c)
			existing[c.name] = true
			continue
		}
		c.parent = nil
		changed = true
	}
	// clear the tail so removed subtrees can be collected
	clear(n.children[len(kept):])
	n.children = kept

	for _, name := range listing.Names {
		if existing[name] {
			continue
		}
		existing[name] = true
		n.children = append(n.children, t.newChild(n, name))
		changed = true
	}

	ignoresTouched := slices.Contains(listing.Names, ".gitignore") || n.ignores != nil
	if ignoresTouched {
		t.readIgnores(n, listing.Names)
	}
	if !changed {
		return ignoresTouched
	}
	sortChildren(n)
	t.rollup(n)
	return true
}

// ReconcileFile handles a content change of a watched file. The tree itself
// has nothing to update; it reports whether the file is currently selected,
// which tells the caller whether the artifact must be rebuilt.
func (t *Tree) ReconcileFile(path string) bool {
	n := t.Find(filepath.Clean(path))
	return n != nil && n.kind == File && n.check == Checked && t.reachable(n)
}

// reachable reports whether n and all its ancestors are visible.
func (t *Tree) reachable(n *Node) bool {
	for ; n != nil; n = n.parent {
		if !n.visible {
			return false
		}
	}
	return true
}
