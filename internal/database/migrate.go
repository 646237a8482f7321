package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// Migrator defines an interface capable of applying schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
}

// SQLMigrator executes .up.sql migration files against a database connection.
// Migrations run on every boot, so each file must be idempotent.
type SQLMigrator struct {
	Logger *slog.Logger
	DB     *sql.DB
	FS     fs.FS
	Path   string
}

// NewSQLMigrator builds a migrator that runs SQL statements from the provided filesystem.
func NewSQLMigrator(db *sql.DB, f fs.FS, dir string, logger *slog.Logger) *SQLMigrator {
	return &SQLMigrator{DB: db, FS: f, Path: dir, Logger: logger}
}

// Up executes all *.up.sql files in lexical order.
func (m *SQLMigrator) Up(ctx context.Context) error {
	if m == nil {
		return errors.New("sql migrator is nil")
	}
	if m.DB == nil {
		return errors.New("sql migrator requires a database handle")
	}
	if m.FS == nil {
		return errors.New("sql migrator requires a filesystem")
	}
	if m.Path == "" {
		return errors.New("sql migrator requires a path")
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	names, err := m.migrationFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, name := range names {
		ran, err := m.apply(ctx, name)
		if err != nil {
			return err
		}
		if !ran {
			logger.Info("skipping empty migration", "file", name)
			continue
		}
		applied++
		logger.Info("migration applied", "file", name)
	}

	if applied == 0 {
		logger.Info("no migrations to run")
	}
	return nil
}

// migrationFiles lists the *.up.sql entries in lexical order.
func (m *SQLMigrator) migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(m.FS, m.Path)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// apply runs every statement in one migration file. It reports false when the
// file holds no statements.
func (m *SQLMigrator) apply(ctx context.Context, name string) (bool, error) {
	contents, err := fs.ReadFile(m.FS, path.Join(m.Path, name))
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", name, err)
	}

	statements := splitSQLStatements(string(contents))
	if len(statements) == 0 {
		return false, nil
	}

	for i, stmt := range statements {
		if _, err := m.DB.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("exec %s [%d]: %w", name, i+1, err)
		}
	}
	return true, nil
}

func splitSQLStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
