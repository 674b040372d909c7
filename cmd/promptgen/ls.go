package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/SchwarzschildX/PromptGen/tree"
)

func (a *App) runLs(args LsCmd, w io.Writer) error {
	if args.Selected {
		paths, err := a.Session.SelectedPaths()
		if err != nil {
			return err
		}
		for _, p := range paths {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		return nil
	}
	rows, err := a.Session.Rows()
	if err != nil {
		return err
	}
	return writeRows(w, rows)
}

// glyph is the checkbox of a state.
func glyph(c tree.CheckState) string {
	switch c {
	case tree.Checked:
		return "[x]"
	case tree.Partial:
		return "[-]"
	default:
		return "[ ]"
	}
}

// formatRow renders a row as an indented checkbox line. Directories end in
// "/"; a directory that could not be listed says so.
func formatRow(r tree.Row) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", r.Depth))
	sb.WriteString(glyph(r.Check))
	sb.WriteByte(' ')
	sb.WriteString(r.Name)
	if r.Kind == tree.Directory && !strings.HasSuffix(r.Name, "/") && !strings.HasSuffix(r.Name, `\`) {
		sb.WriteByte('/')
	}
	if r.ListErr != nil {
		sb.WriteString(" (unreadable)")
	}
	return sb.String()
}

func writeRows(w io.Writer, rows []tree.Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, formatRow(r)); err != nil {
			return err
		}
	}
	return nil
}
