package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/golang-cz/devslog"
	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-isatty"

	promptgen "github.com/SchwarzschildX/PromptGen"
	"github.com/SchwarzschildX/PromptGen/assemble"
	"github.com/SchwarzschildX/PromptGen/ignore"
	"github.com/SchwarzschildX/PromptGen/internal/metrics"
	"github.com/SchwarzschildX/PromptGen/internal/settings"
	"github.com/SchwarzschildX/PromptGen/reader"
	"github.com/SchwarzschildX/PromptGen/tree"
	"github.com/SchwarzschildX/PromptGen/watch"
)

// newHandler logs in colour to a terminal and as JSON lines otherwise.
func newHandler(w io.Writer, level slog.Level, tty bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if tty {
		return devslog.NewHandler(w, &devslog.Options{HandlerOptions: opts})
	}
	return slog.NewJSONHandler(w, opts)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ProvideConfig loads the config file and applies the command-line overrides.
func ProvideConfig(args *Args) (*promptgen.Config, error) {
	// the level is not known before the file is read
	boot := slog.New(newHandler(os.Stderr, slog.LevelWarn, stderrIsTerminal()))
	cfg, err := promptgen.LoadConfig(args.Config, boot)
	if err != nil {
		return nil, err
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	if args.Database != "" {
		cfg.Database = args.Database
	}
	if len(args.Roots) > 0 {
		roots := make([]string, 0, len(args.Roots))
		for _, r := range args.Roots {
			abs, err := filepath.Abs(r)
			if err != nil {
				return nil, fmt.Errorf("invalid root %s: %w", r, err)
			}
			roots = append(roots, abs)
		}
		cfg.Roots = roots
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ProvideLogger(cfg *promptgen.Config) (*slog.Logger, error) {
	level, err := promptgen.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(newHandler(os.Stderr, level, stderrIsTerminal())), nil
}

// ProvideTree builds the node store over the configured roots. .gitignore
// files are read by absolute path, so the billy filesystem is rooted at "/".
func ProvideTree(cfg *promptgen.Config, logger *slog.Logger) *tree.Tree {
	filter := tree.Filter{
		Exclude:   ignore.Parse(cfg.Exclude),
		Gitignore: cfg.Gitignore,
	}
	return tree.New(tree.OSFS{}, cfg.RootPaths(),
		tree.WithLogger(logger),
		tree.WithFilter(filter),
		tree.WithGitignoreFS(osfs.New("/")),
	)
}

func ProvideCounter(cfg *promptgen.Config, logger *slog.Logger) metrics.Counter {
	c, err := metrics.NewCounter(cfg.TokenEstimator)
	if err != nil {
		logger.Warn("falling back to the simple token estimator", "estimator", cfg.TokenEstimator, "error", err)
		return metrics.SimpleCounter{}
	}
	return c
}

func ProvideRegistry(logger *slog.Logger) *reader.Registry {
	return reader.NewRegistry(logger)
}

func ProvideAssembler(reg *reader.Registry, counter metrics.Counter, logger *slog.Logger) *assemble.Assembler {
	return assemble.New(reg, counter, logger)
}

func ProvideDB(cfg *promptgen.Config, logger *slog.Logger) (*sqlx.DB, func(), error) {
	db, err := settings.OpenDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close settings database", "error", err)
		}
	}
	return db, cleanup, nil
}

func ProvideMigrator(db *sqlx.DB, logger *slog.Logger) *goo.DBMigrator {
	return goo.ProvideDBMigrator(db, logger)
}

func ProvideStore(db *sqlx.DB, migrator *goo.DBMigrator, logger *slog.Logger) (*settings.Store, error) {
	return settings.New(db, migrator, logger)
}

// ProvideWatcher only watches the filesystem for the interactive command;
// the one-shot commands get a nil watcher.
func ProvideWatcher(args *Args, logger *slog.Logger) (*watch.Watcher, func(), error) {
	if args.TUI == nil {
		return nil, func() {}, nil
	}
	w, err := watch.New(logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := w.Close(); err != nil {
			logger.Debug("failed to close watcher", "error", err)
		}
	}
	return w, cleanup, nil
}

func ProvideSession(cfg *promptgen.Config, t *tree.Tree, asm *assemble.Assembler, w *watch.Watcher, logger *slog.Logger) *promptgen.Session {
	// keep a nil *watch.Watcher out of the interface
	var watcher promptgen.Watcher
	if w != nil {
		watcher = w
	}
	return promptgen.NewSession(t, asm, watcher, cfg.Debounce(), logger)
}
