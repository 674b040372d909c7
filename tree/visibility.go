package tree

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/SchwarzschildX/PromptGen/ignore"
)

// Filter holds the visibility inputs. The zero value shows everything.
type Filter struct {
	// Extensions is the allow-list for files, lower case with a leading dot.
	// Empty allows every file. Directories always pass.
	Extensions []string
	// HideDot hides names starting with ".".
	HideDot bool
	// HideDunder hides names starting with "__".
	HideDunder bool
	// Exclude hides paths matching gitignore-style patterns.
	Exclude *ignore.Ignore
	// Gitignore also applies the .gitignore files of loaded directories.
	Gitignore bool
}

// ParseExtensions parses a comma separated allow-list such as ".txt, PY".
// Entries are lower-cased and given a leading dot; blanks are dropped.
func ParseExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "." {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		if !slices.Contains(exts, part) {
			exts = append(exts, part)
		}
	}
	return exts
}

// matches applies the extension allow-list to a node.
func (f Filter) matches(n *Node) bool {
	if n.kind == Directory || len(f.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(n.name))
	return slices.Contains(f.Extensions, ext)
}

// ignored applies the name rules and exclude patterns to a node.
func (f Filter) ignored(n *Node, ig *ignore.Ignore) bool {
	if f.HideDot && strings.HasPrefix(n.name, ".") {
		return true
	}
	if f.HideDunder && strings.HasPrefix(n.name, "__") {
		return true
	}
	return ig.IsIgnored(n.path, n.kind == Directory)
}

// SetFilter replaces the filter and recomputes visibility.
func (t *Tree) SetFilter(f Filter) {
	t.filter = f
	t.RecomputeVisibility()
}

// RecomputeVisibility recomputes the visible flag of every materialized node,
// bottom-up. A node is visible when it matches the extension filter or has a
// visible child, and is not ignored. Roots are always visible.
func (t *Tree) RecomputeVisibility() {
	for _, r := range t.roots {
		t.visibility(r, t.filter.Exclude)
		r.visible = true
	}
}

func (t *Tree) visibility(n *Node, ig *ignore.Ignore) bool {
	if t.filter.Gitignore {
		ig = ig.With(n.ignores)
	}
	anyChildVisible := false
	for _, c := range n.children {
		if t.visibility(c, ig) {
			anyChildVisible = true
		}
	}
	n.visible = (t.filter.matches(n) || anyChildVisible) && !t.filter.ignored(n, ig)
	return n.visible
}
