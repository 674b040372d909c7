// Package settings persists the session state between runs: the prompt, the
// filter inputs, and the checked and expanded paths.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver
)

// State is what survives a restart.
type State struct {
	Prompt     string
	Filter     string
	HideDot    bool
	HideDunder bool
	Checked    []string
	Expanded   []string
}

const (
	keyPrompt     = "prompt_text"
	keyFilter     = "filter_text"
	keyHideDot    = "hide_dot_files"
	keyHideDunder = "hide_dunder"

	kindChecked  = "checked"
	kindExpanded = "expanded"
)

var migrations = []goo.Migration{
	{
		Name: "create_settings_table",
		Up: `
			CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
		`,
	},
	{
		Name: "create_saved_paths_table",
		Up: `
			CREATE TABLE IF NOT EXISTS saved_paths (
				kind TEXT NOT NULL,
				position INTEGER NOT NULL,
				path TEXT NOT NULL,
				PRIMARY KEY (kind, position)
			);
		`,
	},
}

type Store struct {
	DB       *sqlx.DB
	Migrator *goo.DBMigrator
	Logger   *slog.Logger
}

// OpenDB opens (creating if needed) the sqlite database at path. ":memory:"
// gives a throwaway database.
func OpenDB(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	// one connection, or every :memory: connection would see its own database
	db.SetMaxOpenConns(1)
	return db, nil
}

// New migrates db and returns a store over it.
func New(db *sqlx.DB, migrator *goo.DBMigrator, logger *slog.Logger) (*Store, error) {
	s := &Store{DB: db, Migrator: migrator, Logger: logger}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open is OpenDB followed by New.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	s, err := New(db, goo.ProvideDBMigrator(db, logger), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate() error {
	if err := s.Migrator.Up(migrations); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.Logger.Debug("settings schema up to date", "migrations", len(migrations))
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type savedPath struct {
	Kind string `db:"kind"`
	Path string `db:"path"`
}

// Load returns the saved state; a fresh database gives the zero State.
func (s *Store) Load() (State, error) {
	var st State

	var rows []setting
	if err := s.DB.Select(&rows, "SELECT key, value FROM settings"); err != nil {
		return st, fmt.Errorf("failed to load settings: %w", err)
	}
	for _, r := range rows {
		switch r.Key {
		case keyPrompt:
			st.Prompt = r.Value
		case keyFilter:
			st.Filter = r.Value
		case keyHideDot:
			st.HideDot = parseBool(r.Value)
		case keyHideDunder:
			st.HideDunder = parseBool(r.Value)
		}
	}

	var paths []savedPath
	if err := s.DB.Select(&paths, "SELECT kind, path FROM saved_paths ORDER BY kind, position"); err != nil {
		return st, fmt.Errorf("failed to load saved paths: %w", err)
	}
	for _, p := range paths {
		switch p.Kind {
		case kindChecked:
			st.Checked = append(st.Checked, p.Path)
		case kindExpanded:
			st.Expanded = append(st.Expanded, p.Path)
		}
	}
	return st, nil
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

// Save replaces the saved state in one transaction.
func (s *Store) Save(st State) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := save(tx, st); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	s.Logger.Debug("saved settings", "checked", len(st.Checked), "expanded", len(st.Expanded))
	return nil
}

func save(tx *sqlx.Tx, st State) error {
	now := time.Now()
	values := map[string]string{
		keyPrompt:     st.Prompt,
		keyFilter:     st.Filter,
		keyHideDot:    strconv.FormatBool(st.HideDot),
		keyHideDunder: strconv.FormatBool(st.HideDunder),
	}
	for k, v := range values {
		_, err := tx.Exec(
			"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
			k, v, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", k, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM saved_paths"); err != nil {
		return fmt.Errorf("failed to clear saved paths: %w", err)
	}
	for kind, paths := range map[string][]string{kindChecked: st.Checked, kindExpanded: st.Expanded} {
		for i, p := range paths {
			if _, err := tx.Exec("INSERT INTO saved_paths (kind, position, path) VALUES (?, ?, ?)", kind, i, p); err != nil {
				return fmt.Errorf("failed to save %s path %s: %w", kind, p, err)
			}
		}
	}
	return nil
}
