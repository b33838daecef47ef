package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// BaseSQLAdapter provides the database/sql plumbing shared by adapters.
// Embed it and set Conn after opening the pool.
type BaseSQLAdapter struct {
	Conn   *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// DB returns the open connection pool, or nil before Connect.
func (b *BaseSQLAdapter) DB() *sql.DB { return b.Conn }

// Close closes the connection pool.
func (b *BaseSQLAdapter) Close() error {
	if b.Conn == nil {
		return nil
	}
	if b.Logger != nil {
		b.Logger.Debug("closing database connection")
	}
	return b.Conn.Close()
}

// IsConnected reports whether Connect has succeeded.
func (b *BaseSQLAdapter) IsConnected() bool { return b.Conn != nil }

// QueryStrings runs a single-column query and collects the values. Adapters
// use it for catalog lookups like table listings.
func (b *BaseSQLAdapter) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	if b.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := b.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
