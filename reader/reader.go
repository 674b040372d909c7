// Package reader extracts text from files for the artifact. Readers are
// looked up by file extension; anything without a registered reader is
// decoded as text.
package reader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader returns the text content of one file.
type Reader interface {
	Read(path string) (string, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(path string) (string, error)

func (f ReaderFunc) Read(path string) (string, error) { return f(path) }

// Registry maps lower-case extensions (with the leading dot) to readers.
type Registry struct {
	readers  map[string]Reader
	fallback Reader
}

// NewRegistry returns a registry with the text reader as fallback and the
// PDF reader registered for ".pdf".
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		readers:  map[string]Reader{},
		fallback: TextReader{},
	}
	r.Register(&PDFReader{Logger: logger}, ".pdf")
	return r
}

// Register installs rd for one or more extensions, replacing earlier
// registrations.
func (r *Registry) Register(rd Reader, exts ...string) {
	for _, ext := range exts {
		r.readers[normalizeExt(ext)] = rd
	}
}

// For returns the reader responsible for path.
func (r *Registry) For(path string) Reader {
	if rd, ok := r.readers[normalizeExt(filepath.Ext(path))]; ok {
		return rd
	}
	return r.fallback
}

// Read reads path with the reader registered for its extension.
func (r *Registry) Read(path string) (string, error) {
	return r.For(path).Read(path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// TextReader decodes a file as UTF-8, honoring a UTF-16 or UTF-8 byte order
// mark. Invalid bytes become U+FFFD instead of failing the read.
type TextReader struct{}

func (TextReader) Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(b)
}

// Decode converts raw bytes to text the way TextReader does.
func Decode(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}
