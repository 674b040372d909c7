package metrics

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter measures a piece of text.
type Counter interface {
	// Count returns the number of bytes, tokens, and lines in text.
	Count(text string) (bytes, tokens, lines int)
}

// NewCounter builds the counter named by a token estimator setting:
// "simple" (or empty) estimates, "tiktoken" uses the gpt-4o encoding and
// "tiktoken:<model>" picks the encoding of another model.
func NewCounter(estimator string) (Counter, error) {
	name, model, _ := strings.Cut(estimator, ":")
	switch name {
	case "", "simple":
		return SimpleCounter{}, nil
	case "tiktoken":
		if model == "" {
			model = "gpt-4o"
		}
		return NewTiktokenCounter(model)
	default:
		return nil, fmt.Errorf("unknown token estimator %q", estimator)
	}
}

// SimpleCounter estimates one token per four bytes.
type SimpleCounter struct{}

func (SimpleCounter) Count(text string) (int, int, int) {
	return len(text), len(text) / 4, countLines(text)
}

// TiktokenCounter counts tokens with a model's BPE encoding.
type TiktokenCounter struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding for model once.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken %s: %w", model, err)
	}
	return &TiktokenCounter{model: model, enc: enc}, nil
}

// Model returns the model whose encoding is used.
func (c *TiktokenCounter) Model() string { return c.model }

func (c *TiktokenCounter) Count(text string) (int, int, int) {
	tokens := len(c.enc.Encode(text, nil, nil))
	return len(text), tokens, countLines(text)
}

// countLines counts newline-terminated lines plus a trailing partial one.
// Empty text has no lines.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
