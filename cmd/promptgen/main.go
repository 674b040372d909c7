package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
)

// Args defines the command-line arguments with subcommands
type Args struct {
	Config   string   `arg:"--config,env:PROMPTGEN_CONFIG" help:"Config file (default: <user config dir>/promptgen/config.toml)"`
	LogLevel string   `arg:"--log-level,env:PROMPTGEN_LOG_LEVEL" help:"debug, info, warn or error"`
	Database string   `arg:"--db,env:PROMPTGEN_DB" help:"Settings database path"`
	Roots    []string `arg:"--root,separate" help:"Tree root; repeat for more than one (default: every volume)"`

	TUI     *TUICmd   `arg:"subcommand:tui" help:"Browse the tree and build the prompt interactively"`
	Out     *OutCmd   `arg:"subcommand:out" help:"Assemble the saved selection"`
	Check   *CheckCmd `arg:"subcommand:check" help:"Check paths and save the selection"`
	Uncheck *CheckCmd `arg:"subcommand:uncheck" help:"Uncheck paths and save the selection"`
	Ls      *LsCmd    `arg:"subcommand:ls" help:"Print the saved tree with its checkboxes"`
}

func (Args) Description() string {
	return "promptgen selects files from a lazily loaded tree and assembles them into one prompt."
}

// TUICmd defines the arguments of the tui subcommand
type TUICmd struct{}

// OutCmd defines the arguments of the out subcommand
type OutCmd struct {
	// Output is '-' for stdout, a file path, or empty to copy to the clipboard
	Output  string  `arg:"-o,--output" help:"Output destination: '-' for stdout; file path to write; if not set, copy to clipboard"`
	Prompt  *string `arg:"-p,--prompt" help:"Use this prompt instead of the saved one"`
	Metrics bool    `arg:"--metrics" help:"Print a token breakdown to stderr"`
}

// CheckCmd defines the arguments of the check and uncheck subcommands
type CheckCmd struct {
	Paths []string `arg:"positional,required" help:"Files or directories"`
}

// LsCmd defines the arguments of the ls subcommand
type LsCmd struct {
	Selected bool `arg:"-s,--selected" help:"Only print the selected files"`
}

func main() {
	var args Args
	parser := arg.MustParse(&args)

	if args.TUI == nil && args.Out == nil && args.Check == nil && args.Uncheck == nil && args.Ls == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, cleanup, err := InitApp(&args)
	if err != nil {
		log.Fatal(err)
	}
	err = app.Run(ctx)
	cleanup()
	if err != nil {
		log.Fatal(err)
	}
}
