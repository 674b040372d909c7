package assert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SchwarzschildX/PromptGen/tree"
)

// Assert is a wrapper around assert.Assertions and testing.T
type Assert struct {
	*assert.Assertions
	T *testing.T
}

// New creates a new Assert object
func New(t *testing.T) *Assert {
	return &Assert{
		Assertions: assert.New(t),
		T:          t,
	}
}

// ChildNames asserts the ordered names of n's materialized children.
func (a *Assert) ChildNames(n *tree.Node, expected ...string) bool {
	a.T.Helper()
	if !a.NotNil(n, "node is nil") {
		return false
	}
	names := make([]string, 0, n.NumChildren())
	for _, c := range n.Children() {
		names = append(names, c.Name())
	}
	if len(expected) == 0 {
		return a.Empty(names, "children of %s", n.Path())
	}
	return a.Equal(expected, names, "children of %s", n.Path())
}

// Checks asserts the check state of the nodes at the given paths.
func (a *Assert) Checks(t *tree.Tree, expected map[string]tree.CheckState) {
	a.T.Helper()
	for path, want := range expected {
		n := t.Find(path)
		if !a.NotNil(n, "node %s not found", path) {
			continue
		}
		a.Equal(want, n.CheckState(), "check state of %s", path)
	}
}

// WriteFiles creates the given files (relative path -> content) under dir,
// creating parent directories as needed. Paths ending in "/" create empty
// directories.
func (a *Assert) WriteFiles(dir string, files map[string]string) {
	a.T.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			a.NoError(os.MkdirAll(path, 0755))
			continue
		}
		a.NoError(os.MkdirAll(filepath.Dir(path), 0755))
		a.NoError(os.WriteFile(path, []byte(content), 0644))
	}
}
