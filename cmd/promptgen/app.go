package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	promptgen "github.com/SchwarzschildX/PromptGen"
	"github.com/SchwarzschildX/PromptGen/internal/settings"
	"github.com/SchwarzschildX/PromptGen/watch"
)

// App is everything a subcommand needs, built by InitApp.
type App struct {
	Args    *Args
	Config  *promptgen.Config
	Logger  *slog.Logger
	DB      *sqlx.DB
	Store   *settings.Store
	Watcher *watch.Watcher
	Session *promptgen.Session

	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer
}

func (a *App) stdout() io.Writer {
	if a.Stdout != nil {
		return a.Stdout
	}
	return os.Stdout
}

// Run starts the session, restores the saved state into it and dispatches to
// the chosen subcommand.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	sessionDone := make(chan error, 1)
	go func() { sessionDone <- a.Session.Run(ctx) }()
	defer func() {
		cancel()
		<-sessionDone
	}()

	if a.Watcher != nil {
		go func() {
			if err := a.Watcher.Run(ctx); err != nil && ctx.Err() == nil {
				a.Logger.Warn("filesystem watcher stopped", "error", err)
			}
		}()
	}

	st, err := a.Store.Load()
	if err != nil {
		return err
	}
	if err := a.Session.Restore(st); err != nil {
		return err
	}

	switch {
	case a.Args.TUI != nil:
		return a.runTUI(ctx)
	case a.Args.Out != nil:
		return a.runOut(*a.Args.Out, a.stdout())
	case a.Args.Check != nil:
		return a.runCheck(a.Args.Check.Paths, true)
	case a.Args.Uncheck != nil:
		return a.runCheck(a.Args.Uncheck.Paths, false)
	case a.Args.Ls != nil:
		return a.runLs(*a.Args.Ls, a.stdout())
	}
	return fmt.Errorf("no subcommand given")
}

// save writes the session state to the settings database.
func (a *App) save() error {
	st, err := a.Session.State()
	if err != nil {
		return err
	}
	return a.Store.Save(st)
}

func (a *App) runCheck(paths []string, checked bool) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", p, err)
		}
		found, err := a.Session.SetChecked(abs, checked)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no such path in the tree: %s", abs)
		}
		a.Logger.Debug("updated selection", "path", abs, "checked", checked)
	}
	return a.save()
}
