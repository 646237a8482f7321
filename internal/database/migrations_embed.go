package database

import (
	"database/sql"
	"embed"
	"io/fs"

	"log/slog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsFS returns the schema migrations compiled into the binary.
func MigrationsFS() fs.FS {
	return migrationFiles
}

// MigrationsDir is the path inside MigrationsFS holding the *.up.sql files.
const MigrationsDir = "migrations"

// NewEmbeddedMigrator builds a migrator over the compiled-in sessions schema.
func NewEmbeddedMigrator(db *sql.DB, logger *slog.Logger) *SQLMigrator {
	return NewSQLMigrator(db, MigrationsFS(), MigrationsDir, logger)
}
