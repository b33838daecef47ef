package history

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate runs all pending migrations on the store's database.
func (s *Store) migrate() error {
	if s.db == nil {
		return fmt.Errorf("history database not opened")
	}
	return MigrateWithDB(s.db)
}

// MigrateWithDB runs migrations against a raw database connection. Useful
// for tests or when the connection is owned elsewhere.
func MigrateWithDB(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Version returns the current migration version.
func (s *Store) Version() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("history database not opened")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}

	return goose.GetDBVersion(s.db)
}
