// Package tree keeps a lazy, mutable mirror of a live filesystem subtree.
//
// A Tree holds one root Node per volume (or per configured root). Directories
// are materialized one level at a time, either when the user expands them or
// when a check cascades into them. Check state is tri-state: files are
// Checked or Unchecked, directories roll their state up from their children.
// Visibility is derived from a Filter and suppresses selection: a hidden node
// and everything beneath it is never reported by SelectedFiles.
//
// A Tree is not safe for concurrent use. All access must happen on one
// goroutine; promptgen.Session provides that serialized context.
package tree

import (
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Kind is the filesystem type of a node.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "dir"
	}
	return "file"
}

// LoadState tells whether a directory's children have been read from disk.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loaded
)

// CheckState is the tri-state checkbox value of a node.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Partial
)

func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case Partial:
		return "partial"
	default:
		return "unchecked"
	}
}

// Node is one filesystem entry. Fields are only mutated by the owning Tree.
type Node struct {
	path     string
	name     string
	kind     Kind
	load     LoadState
	check    CheckState
	expanded bool
	visible  bool

	children []*Node
	parent   *Node

	// listErr is the error of the most recent listing of this directory.
	listErr error
	// ignores holds the patterns of this directory's own .gitignore.
	ignores []gitignore.Pattern
}

func newNode(path, name string, kind Kind, parent *Node) *Node {
	return &Node{
		path:    path,
		name:    name,
		kind:    kind,
		parent:  parent,
		visible: true,
	}
}

func (n *Node) Path() string { return n.path }
func (n *Node) Name() string { return n.name }
func (n *Node) Kind() Kind { return n.kind }
func (n *Node) IsDir() bool { return n.kind == Directory }
func (n *Node) LoadState() LoadState { return n.load }
func (n *Node) Loaded() bool { return n.load == Loaded }
func (n *Node) CheckState() CheckState { return n.check }
func (n *Node) Expanded() bool { return n.expanded }
func (n *Node) Visible() bool { return n.visible }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) IsRoot() bool { return n.parent == nil }

// ListErr returns the error of the last directory listing, nil when the
// listing succeeded. A failed listing still leaves the node Loaded and empty.
func (n *Node) ListErr() error { return n.listErr }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of materialized children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// walk visits n and its materialized descendants in pre-order. Returning
// false from fn skips the node's children.
func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.walk(fn)
	}
}
