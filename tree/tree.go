package tree

import (
	"cmp"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// Tree is the node store: an ordered list of independently lazy-loaded roots.
type Tree struct {
	roots  []*Node
	fs     FS
	filter Filter
	logger *slog.Logger

	// gitignoreFS is consulted for .gitignore files of loaded directories;
	// nil disables reading them.
	gitignoreFS billy.Filesystem
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used to report degraded operations.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) { t.logger = l }
}

// WithFilter sets the initial visibility filter.
func WithFilter(f Filter) Option {
	return func(t *Tree) { t.filter = f }
}

// WithGitignoreFS makes loaded directories read their own .gitignore file
// from fs. The patterns only take effect when Filter.Gitignore is set.
func WithGitignoreFS(fs billy.Filesystem) Option {
	return func(t *Tree) { t.gitignoreFS = fs }
}

// New creates a tree with one NotLoaded directory root per path. Roots are
// never removed for the lifetime of the tree.
func New(fs FS, rootPaths []string, opts ...Option) *Tree {
	t := &Tree{
		fs:     fs,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, p := range rootPaths {
		p = filepath.Clean(p)
		t.roots = append(t.roots, newNode(p, rootName(p), Directory, nil))
	}
	t.RecomputeVisibility()
	return t
}

// rootName is the display name of a root: the volume label for volume roots
// ("C:\", "/"), otherwise the last path segment.
func rootName(path string) string {
	vol := filepath.VolumeName(path)
	rest := strings.TrimPrefix(path, vol)
	if rest == "" || rest == string(filepath.Separator) {
		return path
	}
	return filepath.Base(path)
}

// Roots returns the root nodes in order.
func (t *Tree) Roots() []*Node {
	out := make([]*Node, len(t.roots))
	copy(out, t.roots)
	return out
}

// Filter returns the current visibility filter.
func (t *Tree) Filter() Filter { return t.filter }

// Find locates a materialized node by path with a depth-first search over all
// roots and their loaded descendants. It never touches the filesystem.
func (t *Tree) Find(path string) *Node {
	path = filepath.Clean(path)
	var found *Node
	for _, r := range t.roots {
		r.walk(func(n *Node) bool {
			if found != nil {
				return false
			}
			if n.path == path {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every materialized node in display order. Returning false from
// fn skips the node's subtree.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, r := range t.roots {
		r.walk(fn)
	}
}

// compareNodes orders directories before files, then by case-insensitive
// name, then by exact name so the order is total.
func compareNodes(a, b *Node) int {
	if a.kind != b.kind {
		if a.kind == Directory {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.name), strings.ToLower(b.name)),
		cmp.Compare(a.name, b.name),
	)
}

func sortChildren(n *Node) {
	slices.SortFunc(n.children, compareNodes)
}

// newChild looks up the kind of name inside dir and creates a fresh node.
func (t *Tree) newChild(dir *Node, name string) *Node {
	path := filepath.Join(dir.path, name)
	return newNode(path, name, t.kindOf(path), dir)
}

func (t *Tree) kindOf(path string) Kind {
	if t.fs.IsDir(path) {
		return Directory
	}
	return File
}
