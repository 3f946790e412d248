package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roach88/sqlcore/internal/compiler"
	"github.com/roach88/sqlcore/internal/dialect"
)

// Store runs compiled commands against a database/sql connection.
type Store struct {
	db      *sql.DB
	dialect dialect.Translator
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New wraps an open database whose SQL is spelled by tr.
func New(db *sql.DB, tr dialect.Translator, opts ...Option) *Store {
	s := &Store{db: db, dialect: tr, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates or opens a SQLite database at path and returns a store
// using the sqlite dialect.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return New(db, dialect.NewSQLite(), opts...), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the translator commands for this store must be
// compiled with.
func (s *Store) Dialect() dialect.Translator {
	return s.dialect
}

// ExecScript runs literal SQL, such as table definitions, one statement
// per element.
func (s *Store) ExecScript(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec script: %w", err)
		}
	}
	return nil
}

// ExecCompiled runs a compiled statement that takes no parameters, such
// as index or sequence DDL.
func (s *Store) ExecCompiled(ctx context.Context, res *compiler.Result) error {
	if res.Dialect().Name() != s.dialect.Name() {
		return fmt.Errorf("exec compiled: statement compiled for %s, store uses %s", res.Dialect().Name(), s.dialect.Name())
	}
	text, err := res.SQL()
	if err != nil {
		return fmt.Errorf("exec compiled: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, text); err != nil {
		return fmt.Errorf("exec compiled: %w", err)
	}
	s.logger.Debug("statement executed", "sql", text)
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
