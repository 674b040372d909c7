package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const gitignoreFile = ".gitignore"

// Ignore matches absolute paths against gitignore-style patterns.
type Ignore struct {
	matcher  gitignore.Matcher
	patterns []gitignore.Pattern
}

// New creates an Ignore from already parsed patterns. Later patterns take
// precedence, as in a .gitignore file.
func New(patterns []gitignore.Pattern) *Ignore {
	return &Ignore{
		matcher:  gitignore.NewMatcher(patterns),
		patterns: patterns,
	}
}

// Parse builds an Ignore from raw pattern lines that apply anywhere.
func Parse(lines []string) *Ignore {
	return New(ParsePatterns(lines, nil))
}

// Len returns the number of patterns.
func (ig *Ignore) Len() int {
	if ig == nil {
		return 0
	}
	return len(ig.patterns)
}

// Patterns returns the patterns in precedence order.
func (ig *Ignore) Patterns() []gitignore.Pattern {
	if ig == nil {
		return nil
	}
	return ig.patterns
}

// With returns an Ignore that also applies extra. Extra patterns take
// precedence over the receiver's.
func (ig *Ignore) With(extra []gitignore.Pattern) *Ignore {
	if len(extra) == 0 {
		return ig
	}
	ps := make([]gitignore.Pattern, 0, ig.Len()+len(extra))
	ps = append(ps, ig.Patterns()...)
	ps = append(ps, extra...)
	return New(ps)
}

// IsIgnored checks if an absolute path is excluded by the patterns.
func (ig *Ignore) IsIgnored(path string, isDir bool) bool {
	if ig.Len() == 0 {
		return false
	}
	parts := Split(path)
	if len(parts) == 0 {
		return false
	}
	return ig.matcher.Match(parts, isDir)
}

// ParsePatterns parses gitignore lines. domain is the split path of the
// directory the patterns belong to; nil means they apply everywhere. Blank
// lines and comments are skipped.
func ParsePatterns(lines []string, domain []string) []gitignore.Pattern {
	var ps []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	return ps
}

// ReadDir reads the .gitignore directly inside dir, without looking at any
// subdirectory. A missing file yields no patterns and no error.
func ReadDir(fs billy.Filesystem, dir string) ([]gitignore.Pattern, error) {
	f, err := fs.Open(fs.Join(dir, gitignoreFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open gitignore in %s: %w", dir, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gitignore in %s: %w", dir, err)
	}
	return ParsePatterns(lines, Split(dir)), nil
}

// Split turns an absolute path into its components, dropping the volume
// name and the leading separator.
func Split(path string) []string {
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	path = strings.Trim(filepath.ToSlash(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
