package tree

// SetChecked is the user's checkbox toggle. Checking a directory loads it if
// needed and cascades into every child, loading subdirectories the same way,
// so the whole observable subtree ends up selected. Unchecking cascades into
// every loaded descendant. Ancestors are rolled up afterwards.
func (t *Tree) SetChecked(n *Node, checked bool) {
	if n.kind == File {
		n.check = stateOf(checked)
	} else {
		c := cascader{tree: t, ancestors: make(map[string]bool)}
		c.run(n, checked)
		// new nodes can flip the visibility of their ancestors
		if c.loaded {
			t.RecomputeVisibility()
		}
	}
	if n.parent != nil {
		t.rollup(n.parent)
	}
}

func stateOf(checked bool) CheckState {
	if checked {
		return Checked
	}
	return Unchecked
}

// cascader carries the state of one SetChecked cascade.
type cascader struct {
	tree *Tree
	// resolved paths of the directories on the current cascade path
	ancestors map[string]bool
	loaded    bool
}

// run sets the state of n's subtree and recomputes n itself bottom-up.
func (c *cascader) run(n *Node, checked bool) {
	if n.kind == File {
		n.check = stateOf(checked)
		return
	}
	if checked {
		target, ok := c.enter(n)
		if target != "" {
			defer delete(c.ancestors, target)
		}
		if ok && n.load == NotLoaded {
			c.tree.load(n)
			c.loaded = true
		}
	}
	for _, child := range n.children {
		c.run(child, checked)
	}
	n.check = rollupOf(n)
}

// enter pushes n's resolved path onto the cascade path and reports whether
// the cascade may load it, which is false when a symlink leads back to a
// directory the cascade is already inside. The returned path is non-empty
// when it was pushed and must be popped by the caller. Filesystems that cannot
// resolve links are trusted as is.
func (c *cascader) enter(n *Node) (string, bool) {
	r, ok := c.tree.fs.(Resolver)
	if !ok {
		return "", true
	}
	target, err := r.RealPath(n.path)
	if err != nil {
		return "", true
	}
	if c.ancestors[target] {
		c.tree.logger.Debug("skipping symlink cycle", "path", n.path, "target", target)
		return "", false
	}
	c.ancestors[target] = true
	return target, true
}

// rollupOf derives a directory's state from its children: Checked iff all
// are Checked, Unchecked iff all are Unchecked (including no children at all),
// Partial otherwise.
func rollupOf(n *Node) CheckState {
	if len(n.children) == 0 {
		return Unchecked
	}
	var checked, unchecked int
	for _, c := range n.children {
		switch c.check {
		case Checked:
			checked++
		case Unchecked:
			unchecked++
		}
	}
	switch {
	case checked == len(n.children):
		return Checked
	case unchecked == len(n.children):
		return Unchecked
	default:
		return Partial
	}
}

// rollup recomputes n and each of its ancestors. It stops early once a
// directory's state is unchanged, since nothing above can change either.
func (t *Tree) rollup(n *Node) {
	for ; n != nil; n = n.parent {
		if n.kind != Directory {
			continue
		}
		s := rollupOf(n)
		if s == n.check {
			return
		}
		n.check = s
	}
}

// SelectedFiles returns the Checked, visible files in depth-first display
// order. Traversal does not descend into hidden nodes, so a hidden directory
// suppresses everything beneath it regardless of check state.
func (t *Tree) SelectedFiles() []*Node {
	var files []*Node
	t.Walk(func(n *Node) bool {
		if !n.visible {
			return false
		}
		if n.kind == File && n.check == Checked {
			files = append(files, n)
		}
		return true
	})
	return files
}

// SelectedPaths is SelectedFiles reduced to paths.
func (t *Tree) SelectedPaths() []string {
	files := t.SelectedFiles()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths
}

// CheckedPaths returns every Checked file regardless of visibility, which is
// what a saved selection needs to survive a filter change.
func (t *Tree) CheckedPaths() []string {
	var paths []string
	t.Walk(func(n *Node) bool {
		if n.kind == File && n.check == Checked {
			paths = append(paths, n.path)
		}
		return true
	})
	return paths
}
