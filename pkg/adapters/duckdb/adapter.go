// Package duckdb provides a DuckDB database adapter for querykit.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/dialect"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
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
	d, _ := dialect.Get("duckdb")
	return d
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == ":memory:" {
		// go-duckdb opens an in-memory database on an empty DSN.
		path = ""
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg

	return nil
}

// TableNames lists the base tables of the main schema.
func (a *Adapter) TableNames(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
}

var _ adapter.Adapter = (*Adapter)(nil)
