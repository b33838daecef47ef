// Package sqlite provides a SQLite database adapter for querykit.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/dialect"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL dialect statements compile against.
func (a *Adapter) Dialect() *dialect.Dialect {
	d, _ := dialect.Get("sqlite")
	return d
}

// Connect establishes a connection to SQLite.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY on concurrent statements.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	a.Conn = db
	a.Cfg = cfg

	return nil
}

// TableNames lists the user tables, excluding SQLite internals.
func (a *Adapter) TableNames(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
}

var _ adapter.Adapter = (*Adapter)(nil)
