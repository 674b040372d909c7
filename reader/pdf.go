package reader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader concatenates the plain text of every page in document order.
// Extraction problems never fail the read: unreadable pages are skipped, and
// a document that cannot be parsed reads as "".
type PDFReader struct {
	Logger *slog.Logger
}

func (r *PDFReader) Read(path string) (text string, err error) {
	defer func() {
		// the parser panics on some malformed documents
		if p := recover(); p != nil {
			r.logger().Warn("pdf extraction panicked", "path", path, "panic", fmt.Sprint(p))
			text, err = "", nil
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		r.logger().Warn("failed to open pdf", "path", path, "error", err)
		return "", nil
	}
	defer f.Close()

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		s, err := page.GetPlainText(fonts)
		if err != nil {
			r.logger().Debug("failed to extract pdf page", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (r *PDFReader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
