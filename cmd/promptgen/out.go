package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/SchwarzschildX/PromptGen/assemble"
	"github.com/SchwarzschildX/PromptGen/internal/metrics"
	"github.com/SchwarzschildX/PromptGen/internal/metrics/chart"
)

// termWidth returns the width of the terminal, or 80 as a fallback.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func (a *App) runOut(args OutCmd, stdout io.Writer) error {
	if args.Prompt != nil {
		if err := a.Session.SetPrompt(*args.Prompt); err != nil {
			return err
		}
	}
	art, err := a.Session.Recompute()
	if err != nil {
		return err
	}

	if err := writeArtifact(args.Output, art.Text, stdout); err != nil {
		return err
	}
	if args.Output == "" {
		fmt.Fprintln(os.Stderr, "Output copied to clipboard")
	}
	if len(art.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d unreadable file(s)\n", len(art.Skipped))
	}
	if args.Metrics && art.Metrics != nil {
		return chart.Print(art.Metrics, chart.DefaultOptions(termWidth, os.Stderr))
	}
	return nil
}

// writeArtifact sends text to stdout for "-", to a file for any other
// non-empty destination, and to the clipboard otherwise.
func writeArtifact(dest, text string, stdout io.Writer) error {
	switch {
	case dest == "-":
		_, err := io.WriteString(stdout, text)
		return err
	case dest != "":
		if err := os.WriteFile(dest, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", dest, err)
		}
		return nil
	default:
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		return nil
	}
}

// statusLine summarizes an artifact in one line.
func statusLine(art assemble.Artifact) string {
	parts := []string{fmt.Sprintf("%d files", len(art.Files))}
	if art.Metrics != nil {
		total := art.Metrics.SumBy(metrics.KindArtifact)
		parts = append(parts, fmt.Sprintf("%d tokens", total.Tokens), fmt.Sprintf("%d lines", total.Lines))
	}
	if n := len(art.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	return strings.Join(parts, ", ")
}
