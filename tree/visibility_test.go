package tree_test

import (
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/SchwarzschildX/PromptGen/ignore"
	"github.com/SchwarzschildX/PromptGen/internal/assert"
	"github.com/SchwarzschildX/PromptGen/tree"
)

func TestParseExtensions(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{".txt", ".py", ".md"}, tree.ParseExtensions(".txt, PY,,md , .TXT, ."))
	assert.Empty(tree.ParseExtensions(""))
	assert.Empty(tree.ParseExtensions(" , "))
}

func TestVisibility_ExtensionFilterSuppressesSelection(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/notes.txt", "/vol/draft.pdf")
	tr := newTree(t, fs)
	root := tr.Roots()[0]
	tr.Expand(root)
	tr.SetChecked(tr.Find("/vol/notes.txt"), true)
	tr.SetChecked(tr.Find("/vol/draft.pdf"), true)

	tr.SetFilter(tree.Filter{Extensions: []string{".txt"}})

	assert.True(tr.Find("/vol/notes.txt").Visible())
	assert.False(tr.Find("/vol/draft.pdf").Visible())
	assert.Equal(tree.Checked, tr.Find("/vol/draft.pdf").CheckState())
	assert.Equal([]string{"/vol/notes.txt"}, tr.SelectedPaths())

	tr.SetFilter(tree.Filter{})
	assert.Equal([]string{"/vol/draft.pdf", "/vol/notes.txt"}, tr.SelectedPaths())
}

func TestVisibility_FilterAppliesToLoadedChildren(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/notes.txt", "/vol/draft.pdf")
	tr := newTree(t, fs, tree.WithFilter(tree.Filter{Extensions: []string{".txt"}}))
	root := tr.Roots()[0]

	tr.Load(root)
	assert.ChildNames(root, "draft.pdf", "notes.txt")
	assert.False(tr.Find("/vol/draft.pdf").Visible())
	assert.True(tr.Find("/vol/notes.txt").Visible())

	tr.SetChecked(tr.Find("/vol/draft.pdf"), true)
	tr.SetChecked(tr.Find("/vol/notes.txt"), true)
	assert.Equal([]string{"/vol/notes.txt"}, tr.SelectedPaths())
	assert.Equal(tree.Checked, root.CheckState())
}

func TestVisibility_ExtensionIsCaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/README.TXT", "/vol/main.go")
	tr := newTree(t, fs)
	tr.Expand(tr.Roots()[0])
	tr.SetFilter(tree.Filter{Extensions: tree.ParseExtensions("txt")})

	assert.True(tr.Find("/vol/README.TXT").Visible())
	assert.False(tr.Find("/vol/main.go").Visible())
}

func TestVisibility_DirectoriesAndRoots(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/src/deep/a.go", "/vol/src/b.md", "/vol/empty/", "/vol/c.md")
	tr := newTree(t, fs)
	tr.SetChecked(tr.Roots()[0], true)

	tr.SetFilter(tree.Filter{Extensions: []string{".go"}})
	assert.True(tr.Find("/vol/src").Visible())
	assert.True(tr.Find("/vol/src/deep").Visible())
	assert.False(tr.Find("/vol/src/b.md").Visible())
	assert.True(tr.Find("/vol/empty").Visible(), "directories always match")
	assert.Equal([]string{"/vol/src/deep/a.go"}, tr.SelectedPaths())

	tr.SetFilter(tree.Filter{Extensions: []string{".rs"}})
	assert.True(tr.Roots()[0].Visible(), "roots never disappear")
	assert.Empty(tr.SelectedPaths())
}

func TestVisibility_HiddenDirectoryExcludesCheckedDescendants(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/.cache/blob.txt", "/vol/__pycache__/m.pyc", "/vol/__init__.py", "/vol/a.py")
	tr := newTree(t, fs)
	tr.SetChecked(tr.Roots()[0], true)
	assert.Len(tr.SelectedPaths(), 4)

	tr.SetFilter(tree.Filter{HideDot: true})
	assert.False(tr.Find("/vol/.cache").Visible())
	assert.Equal(tree.Checked, tr.Find("/vol/.cache/blob.txt").CheckState())
	assert.Equal([]string{"/vol/__pycache__/m.pyc", "/vol/__init__.py", "/vol/a.py"}, tr.SelectedPaths())

	tr.SetFilter(tree.Filter{HideDot: true, HideDunder: true})
	assert.Equal([]string{"/vol/a.py"}, tr.SelectedPaths())
}

func TestVisibility_ExcludePatterns(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/node_modules/x/index.js", "/vol/app.js", "/vol/app.min.js")
	tr := newTree(t, fs)
	tr.SetChecked(tr.Roots()[0], true)

	tr.SetFilter(tree.Filter{Exclude: ignore.Parse([]string{"node_modules/", "*.min.js"})})
	assert.False(tr.Find("/vol/node_modules").Visible())
	assert.Equal([]string{"/vol/app.js"}, tr.SelectedPaths())
}

func TestVisibility_Gitignore(t *testing.T) {
	assert := assert.New(t)

	fs := newMemFS(t, "/vol/repo/build/out.bin", "/vol/repo/main.go", "/vol/repo/debug.log")
	require.NoError(t, util.WriteFile(fs, "/vol/repo/.gitignore", []byte("# artifacts\nbuild/\n*.log\n"), 0644))

	tr := newTree(t, fs, tree.WithGitignoreFS(fs))
	tr.SetChecked(tr.Roots()[0], true)
	assert.Len(tr.SelectedPaths(), 4)

	tr.SetFilter(tree.Filter{Gitignore: true})
	assert.False(tr.Find("/vol/repo/build").Visible())
	assert.False(tr.Find("/vol/repo/debug.log").Visible())
	assert.Equal([]string{"/vol/repo/.gitignore", "/vol/repo/main.go"}, tr.SelectedPaths())

	// editing .gitignore takes effect on the next reconcile
	require.NoError(t, util.WriteFile(fs, "/vol/repo/.gitignore", []byte("*.go\n"), 0644))
	tr.Reconcile("/vol/repo")
	assert.Equal([]string{"/vol/repo/build/out.bin", "/vol/repo/.gitignore", "/vol/repo/debug.log"}, tr.SelectedPaths())
}
