package tree

// Row is a value snapshot of one displayed node, safe to hand to another
// goroutine.
type Row struct {
	Path     string
	Name     string
	Depth    int
	Kind     Kind
	Check    CheckState
	Loaded   bool
	Expanded bool
	ListErr  error
}

func rowOf(n *Node, depth int) Row {
	return Row{
		Path:     n.path,
		Name:     n.name,
		Depth:    depth,
		Kind:     n.kind,
		Check:    n.check,
		Loaded:   n.load == Loaded,
		Expanded: n.expanded,
		ListErr:  n.listErr,
	}
}

// Rows flattens what a tree view shows: visible nodes whose ancestors are all
// expanded, in display order.
func (t *Tree) Rows() []Row {
	var rows []Row
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !n.visible {
			return
		}
		rows = append(rows, rowOf(n, depth))
		if !n.expanded {
			return
		}
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	for _, r := range t.roots {
		visit(r, 0)
	}
	return rows
}
