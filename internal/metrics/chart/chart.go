// Package chart renders the token breakdown of an artifact as a bar chart.
// Nothing here reads the terminal; the width is injected.
package chart

import (
	"cmp"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/SchwarzschildX/PromptGen/internal/metrics"
)

// Options controls layout.
type Options struct {
	BarWidth     int        // 0 picks 35% of the terminal, at most 30
	FillRune     rune       // default '█'
	ThresholdPct float64    // directories below this share collapse into dir/**
	TermWidth    func() int // terminal columns
	Writer       io.Writer
}

func DefaultOptions(termWidth func() int, w io.Writer) Options {
	return Options{
		FillRune:     '█',
		ThresholdPct: 1,
		TermWidth:    termWidth,
		Writer:       w,
	}
}

// Print writes the chart for c. File entries are grouped by directory
// relative to the deepest directory shared by all files.
func Print(c *metrics.Collector, opt Options) error {
	c.Wait()
	files, others := split(c.Entries())
	total := 0
	for _, e := range files {
		total += e.Tokens
	}
	for _, e := range others {
		total += e.Tokens
	}

	root := buildDirTree(relativize(files))
	bars := collapseSmallDirs(root, total, opt.ThresholdPct)
	for _, e := range others {
		bars = append(bars, bar{Label: e.Key.String(), Tokens: e.Tokens})
	}
	for _, ln := range layout(bars, total, len(files), opt) {
		if _, err := fmt.Fprintln(opt.Writer, ln); err != nil {
			return err
		}
	}
	return nil
}

// split separates file entries from everything else. The artifact total is
// dropped since it would count every file twice.
func split(entries []metrics.Entry) (files, others []metrics.Entry) {
	for _, e := range entries {
		switch e.Kind {
		case metrics.KindFile:
			files = append(files, e)
		case metrics.KindArtifact:
		default:
			others = append(others, e)
		}
	}
	return files, others
}

type fileTokens struct {
	Path   string
	Tokens int
}

// relativize strips the longest directory prefix shared by every file path.
func relativize(files []metrics.Entry) []fileTokens {
	out := make([]fileTokens, len(files))
	if len(files) == 0 {
		return out
	}
	prefix := path.Dir(files[0].Name)
	for _, f := range files[1:] {
		for prefix != "/" && prefix != "." && !strings.HasPrefix(f.Name, prefix+"/") {
			prefix = path.Dir(prefix)
		}
	}
	for i, f := range files {
		rel := strings.TrimPrefix(f.Name, prefix)
		out[i] = fileTokens{Path: strings.TrimPrefix(rel, "/"), Tokens: f.Tokens}
	}
	return out
}

type dirNode struct {
	Name     string
	IsFile   bool
	Tokens   int
	Children map[string]*dirNode
}

func buildDirTree(files []fileTokens) *dirNode {
	root := &dirNode{Name: ".", Children: map[string]*dirNode{}}
	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		cur := root
		for i, part := range parts {
			next, ok := cur.Children[part]
			if !ok {
				next = &dirNode{Name: part, IsFile: i == len(parts)-1, Children: map[string]*dirNode{}}
				cur.Children[part] = next
			}
			cur = next
		}
		cur.Tokens = f.Tokens
	}
	sumTokens(root)
	return root
}

func sumTokens(n *dirNode) int {
	if n.IsFile {
		return n.Tokens
	}
	n.Tokens = 0
	for _, c := range n.Children {
		n.Tokens += sumTokens(c)
	}
	return n.Tokens
}

type bar struct {
	Label  string
	Tokens int
}

// collapseSmallDirs emits one bar per large file and folds the children
// under thresholdPct of total into a single dir/** bar.
func collapseSmallDirs(root *dirNode, total int, thresholdPct float64) []bar {
	var out []bar
	thresh := float64(total) * thresholdPct / 100
	var walk func(n *dirNode, label string)
	walk = func(n *dirNode, label string) {
		if n.IsFile {
			out = append(out, bar{Label: label, Tokens: n.Tokens})
			return
		}
		small := 0
		for _, c := range n.Children {
			if float64(c.Tokens) < thresh {
				small += c.Tokens
				continue
			}
			walk(c, path.Join(label, c.Name))
		}
		if small > 0 {
			out = append(out, bar{Label: path.Join(label, "**"), Tokens: small})
		}
	}
	walk(root, "")
	return out
}

func layout(bars []bar, total, fileCount int, opt Options) []string {
	if len(bars) == 0 || total == 0 {
		return []string{"No tokens recorded"}
	}
	const pctW, tokensW, gapW = 6, 6, 2

	slices.SortFunc(bars, func(a, b bar) int {
		return cmp.Or(cmp.Compare(a.Tokens, b.Tokens), cmp.Compare(a.Label, b.Label))
	})

	barW := opt.BarWidth
	if barW <= 0 {
		barW = min(int(float64(opt.TermWidth())*0.35), 30)
	}
	keyW := max(opt.TermWidth()-(barW+pctW+tokensW+gapW*3), 8)
	fill := opt.FillRune
	if fill == 0 {
		fill = '█'
	}
	maxTokens := bars[len(bars)-1].Tokens

	var lines []string
	for _, b := range bars {
		n := 0
		if maxTokens > 0 {
			n = int(float64(b.Tokens)/float64(maxTokens)*float64(barW) + 0.5)
		}
		if n == 0 && b.Tokens > 0 {
			n = 1
		}
		lines = append(lines, row(strings.Repeat(string(fill), n), barW, pct(b.Tokens, total), tokensW, b.Tokens, keyW, b.Label))
	}
	lines = append(lines, row(strings.Repeat("─", barW), barW, 100, tokensW, total, keyW, "TOTAL"))
	lines = append(lines, fmt.Sprintf("\nSummary: %d files, %d tokens", fileCount, total))
	return lines
}

func row(barText string, barW int, p float64, tokensW, tokens, keyW int, label string) string {
	// pad by runes, the fill characters are multi-byte
	pad := max(barW-len([]rune(barText)), 0)
	return fmt.Sprintf("%s%s  %5.1f%%  %*d  %s", barText, strings.Repeat(" ", pad), p, tokensW, tokens, trim(label, keyW))
}

func trim(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "…" + string(r[len(r)-width+1:])
}

func pct(part, total int) float64 { return float64(part) * 100 / float64(total) }
