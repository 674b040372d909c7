// Package assemble builds the prompt artifact: the user's prompt followed by
// one fenced block per selected file.
package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/SchwarzschildX/PromptGen/internal/metrics"
	"github.com/SchwarzschildX/PromptGen/reader"
)

// Artifact is the result of one assembly.
type Artifact struct {
	Text string
	// Files lists the normalized paths whose blocks made it into Text.
	Files []string
	// Skipped lists the files left out because they could not be read.
	Skipped []Skip
	// Metrics is nil when the assembler has no counter.
	Metrics *metrics.Collector
}

// Skip records a file whose content could not be read.
type Skip struct {
	Path string
	Err  error
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	content string
}

// Assembler reads file content through a reader and caches it until the
// file's size or modification time changes, or it is invalidated.
type Assembler struct {
	reader  reader.Reader
	counter metrics.Counter
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New creates an Assembler. counter may be nil to skip measuring.
func New(rd reader.Reader, counter metrics.Counter, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		reader:  rd,
		counter: counter,
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

// Assemble concatenates prompt and the content of files, in order. A file
// that cannot be read is skipped and assembly continues.
func (a *Assembler) Assemble(prompt string, files []string) Artifact {
	var (
		sb  strings.Builder
		art Artifact
	)
	if a.counter != nil {
		art.Metrics = metrics.NewCollector(a.counter, 4)
		art.Metrics.Add(metrics.KindPrompt, "prompt", prompt)
	}
	sb.WriteString(prompt)

	seen := make(map[string]bool, len(files))
	for _, path := range files {
		seen[path] = true
		content, err := a.content(path)
		if err != nil {
			a.logger.Warn("could not read file", "path", path, "error", err)
			art.Skipped = append(art.Skipped, Skip{Path: path, Err: err})
			continue
		}
		name := NormalizePath(path)
		block := Block(name, content)
		sb.WriteString(block)
		art.Files = append(art.Files, name)
		if art.Metrics != nil {
			art.Metrics.Add(metrics.KindFile, name, block)
		}
	}
	a.prune(seen)

	art.Text = sb.String()
	if art.Metrics != nil {
		art.Metrics.Add(metrics.KindArtifact, "total", art.Text)
		art.Metrics.Wait()
	}
	return art
}

// content returns the cached content of path when the file is unchanged,
// otherwise reads it again.
func (a *Assembler) content(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		a.Invalidate(path)
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	a.mu.Lock()
	e, ok := a.cache[path]
	a.mu.Unlock()
	if ok && e.size == fi.Size() && e.modTime.Equal(fi.ModTime()) {
		return e.content, nil
	}

	s, err := a.reader.Read(path)
	if err != nil {
		a.Invalidate(path)
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	a.mu.Lock()
	a.cache[path] = cacheEntry{size: fi.Size(), modTime: fi.ModTime(), content: s}
	a.mu.Unlock()
	return s, nil
}

// Invalidate drops the cached content of path.
func (a *Assembler) Invalidate(path string) {
	a.mu.Lock()
	delete(a.cache, path)
	a.mu.Unlock()
}

// prune forgets files that are no longer selected.
func (a *Assembler) prune(keep map[string]bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for path := range a.cache {
		if !keep[path] {
			delete(a.cache, path)
		}
	}
}

// Cached reports whether content for path is cached.
func (a *Assembler) Cached(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.cache[path]
	return ok
}

// NormalizePath makes path absolute and uses '/' as the only separator.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

// Block formats one file for the artifact.
func Block(path, content string) string {
	fence := Fence(content)
	return "\n\nFile: " + path + "\n\n" + fence + "\n" + content + "\n" + fence
}

// Fence returns a backtick fence longer than any backtick run in content,
// and at least three backticks long.
func Fence(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
