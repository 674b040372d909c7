package tree

import (
	"path/filepath"
	"strings"
)

// Lookup resolves a saved path the way a user would reach it: starting at the
// root that contains it, each ancestor directory is expanded (and so loaded)
// before its child is looked up by name; directories already expanded are
// left alone, as re-expanding an open directory does nothing for a user.
// The node itself is not expanded.
// It returns nil when the path lies outside every root or a segment no longer
// exists; directories expanded on the way stay expanded.
func (t *Tree) Lookup(path string) *Node {
	path = filepath.Clean(path)
	root, rel := t.rootFor(path)
	if root == nil {
		return nil
	}
	cur := root
	if rel != "." {
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if !cur.expanded || cur.load != Loaded {
				t.Expand(cur)
			}
			next := cur.Child(part)
			if next == nil {
				t.logger.Debug("saved path no longer exists", "path", path, "missing", filepath.Join(cur.path, part))
				return nil
			}
			cur = next
		}
	}
	return cur
}

// rootFor returns the innermost root containing path and path relative to it.
func (t *Tree) rootFor(path string) (*Node, string) {
	var best *Node
	var bestRel string
	for _, r := range t.roots {
		rel, err := filepath.Rel(r.path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(r.path) > len(best.path) {
			best, bestRel = r, rel
		}
	}
	return best, bestRel
}

// CheckPath restores one saved checked path. It reports whether the path
// could still be found.
func (t *Tree) CheckPath(path string) bool {
	n := t.Lookup(path)
	if n == nil {
		return false
	}
	t.SetChecked(n, true)
	return true
}

// ExpandPath restores one saved expanded directory.
func (t *Tree) ExpandPath(path string) bool {
	n := t.Lookup(path)
	if n == nil || n.kind != Directory {
		return false
	}
	t.Expand(n)
	return true
}
