package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SchwarzschildX/PromptGen/internal/metrics"
)

func constantTermWidth(cols int) func() int { return func() int { return cols } }

// fakeMetrics holds three files and a prompt:
//
//	/vol/proj/a/big.go   : 900 tokens
//	/vol/proj/a/small.go :  20 tokens
//	/vol/proj/x/y/z.go   :  50 tokens
//	prompt               :  30 tokens
func fakeMetrics() *metrics.Collector {
	return metrics.FromItems(map[metrics.Key]metrics.Item{
		{Kind: metrics.KindFile, Name: "/vol/proj/a/big.go"}:   {Tokens: 900},
		{Kind: metrics.KindFile, Name: "/vol/proj/a/small.go"}: {Tokens: 20},
		{Kind: metrics.KindFile, Name: "/vol/proj/x/y/z.go"}:   {Tokens: 50},
		{Kind: metrics.KindPrompt, Name: "prompt"}:             {Tokens: 30},
		{Kind: metrics.KindArtifact, Name: "total"}:            {Tokens: 1000},
	})
}

func TestRelativize(t *testing.T) {
	assert := assert.New(t)

	files, _ := split(fakeMetrics().Entries())
	got := relativize(files)
	assert.ElementsMatch([]fileTokens{
		{"a/big.go", 900},
		{"a/small.go", 20},
		{"x/y/z.go", 50},
	}, got)

	single := relativize([]metrics.Entry{{Key: metrics.Key{Kind: metrics.KindFile, Name: "/vol/a.go"}}})
	assert.Equal("a.go", single[0].Path)

	spread := relativize([]metrics.Entry{
		{Key: metrics.Key{Kind: metrics.KindFile, Name: "/vol/a.go"}},
		{Key: metrics.Key{Kind: metrics.KindFile, Name: "/home/b.go"}},
	})
	assert.Equal("vol/a.go", spread[0].Path)
	assert.Equal("home/b.go", spread[1].Path)
}

func TestBuildDirTree(t *testing.T) {
	assert := assert.New(t)

	root := buildDirTree([]fileTokens{
		{"a/big.go", 900},
		{"a/small.go", 20},
		{"x/y/z.go", 50},
	})
	assert.Equal(970, root.Tokens)
	assert.Equal(920, root.Children["a"].Tokens)
	assert.True(root.Children["a"].Children["big.go"].IsFile)
}

func TestCollapseSmallDirs(t *testing.T) {
	assert := assert.New(t)

	root := buildDirTree([]fileTokens{
		{"a/big.go", 900},
		{"a/small.go", 20},
		{"x/y/z.go", 50},
	})
	var labels []string
	for _, b := range collapseSmallDirs(root, 970, 5) {
		labels = append(labels, b.Label)
	}
	assert.ElementsMatch([]string{"a/big.go", "a/**", "x/y/z.go"}, labels)
}

func TestPrint(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	opt := DefaultOptions(constantTermWidth(80), &buf)
	opt.BarWidth = 20
	opt.FillRune = '#'
	opt.ThresholdPct = 5
	assert.NoError(Print(fakeMetrics(), opt))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// a/** (20), prompt (30), z.go (50), big.go (900), total, blank, summary
	assert.Len(lines, 7)
	assert.Contains(lines[0], "a/**")
	assert.Contains(lines[1], "prompt:prompt")
	assert.Contains(lines[3], "a/big.go")
	assert.Contains(lines[3], strings.Repeat("#", 20))
	assert.Contains(lines[4], "TOTAL")
	assert.Contains(lines[4], "1000")
	assert.Equal("Summary: 3 files, 1000 tokens", lines[6])
}

func TestPrint_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Print(metrics.FromItems(nil), DefaultOptions(constantTermWidth(80), &buf)))
	assert.Equal(t, "No tokens recorded\n", buf.String())
}
