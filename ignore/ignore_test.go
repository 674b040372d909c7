package ignore

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"vol", "src", "a.go"}, Split("/vol/src/a.go"))
	assert.Equal([]string{"vol"}, Split("/vol/"))
	assert.Nil(Split("/"))
}

func TestParse(t *testing.T) {
	assert := assert.New(t)

	ig := Parse([]string{"", "# comment", "*.log", "build/", "!keep.log"})
	assert.Equal(3, ig.Len())

	assert.True(ig.IsIgnored("/vol/debug.log", false))
	assert.True(ig.IsIgnored("/vol/a/b/trace.log", false))
	assert.False(ig.IsIgnored("/vol/keep.log", false))
	assert.True(ig.IsIgnored("/vol/build", true))
	assert.False(ig.IsIgnored("/vol/build", false), "build/ only matches directories")
	assert.False(ig.IsIgnored("/vol/main.go", false))
	assert.False(ig.IsIgnored("/", true))
}

func TestNilIgnore(t *testing.T) {
	assert := assert.New(t)

	var ig *Ignore
	assert.Equal(0, ig.Len())
	assert.False(ig.IsIgnored("/vol/a.log", false))

	ig = ig.With(ParsePatterns([]string{"*.log"}, nil))
	assert.True(ig.IsIgnored("/vol/a.log", false))
}

func TestWith_ExtraTakesPrecedence(t *testing.T) {
	assert := assert.New(t)

	base := Parse([]string{"*.log"})
	ig := base.With(ParsePatterns([]string{"!important.log"}, Split("/vol/app")))

	assert.False(ig.IsIgnored("/vol/app/important.log", false))
	assert.True(ig.IsIgnored("/vol/other/important.log", false), "domain limits the negation")
	assert.Equal(1, base.Len(), "receiver is unchanged")
	assert.Same(base, base.With(nil))
}

func TestReadDir(t *testing.T) {
	assert := assert.New(t)

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/vol/repo/.gitignore", []byte("# generated\r\nbin/\r\n\r\n*.tmp\r\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "/vol/repo/sub/.gitignore", []byte("*.go\n"), 0644))

	ps, err := ReadDir(fs, "/vol/repo")
	require.NoError(t, err)
	assert.Len(ps, 2)

	ig := New(ps)
	assert.True(ig.IsIgnored("/vol/repo/bin", true))
	assert.True(ig.IsIgnored("/vol/repo/sub/x.tmp", false))
	assert.False(ig.IsIgnored("/vol/other/x.tmp", false), "patterns are scoped to their directory")
	assert.False(ig.IsIgnored("/vol/repo/sub/main.go", false), "subdirectory files are not read")

	ps, err = ReadDir(fs, "/vol/empty")
	assert.NoError(err)
	assert.Nil(ps)
}
