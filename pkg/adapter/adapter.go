// Package adapter connects querykit to concrete database engines. Each
// engine lives in its own package under pkg/adapters and registers itself
// with the registry at import time.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/querykit/pkg/dialect"
)

// Config holds the connection settings for a database target.
type Config struct {
	// Type selects the registered adapter (e.g. "sqlite", "duckdb",
	// "postgres").
	Type string

	// Path is the database file for file-based engines. Use ":memory:"
	// for an in-memory database.
	Path string

	// Host and Port address network-based engines.
	Host string
	Port int

	// Database is the database name.
	Database string

	// Username and Password authenticate network-based engines.
	Username string
	Password string

	// Schema overrides the dialect's default schema.
	Schema string

	// Options carries driver-specific settings (e.g. sslmode).
	Options map[string]string
}

// Adapter is implemented by every database backend.
type Adapter interface {
	// Connect opens the connection pool described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection pool.
	Close() error

	// DB returns the open connection pool, or nil before Connect.
	DB() *sql.DB

	// Dialect returns the SQL dialect statements compile against.
	Dialect() *dialect.Dialect

	// TableNames lists the user tables of the connected database, for
	// completion and inspection surfaces.
	TableNames(ctx context.Context) ([]string, error)
}
