// Package postgres provides a PostgreSQL database adapter for querykit.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/dialect"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	d, _ := dialect.Get("postgres")
	return d
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)

	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.Conn = db
	a.Cfg = cfg

	return nil
}

// buildDSN constructs a PostgreSQL connection string in key=value form:
// host=localhost port=5432 dbname=app sslmode=disable user=postgres ...
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// TableNames lists the base tables of the configured schema
// (default "public").
func (a *Adapter) TableNames(ctx context.Context) ([]string, error) {
	schema := a.Cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return a.QueryStrings(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, schema)
}

var _ adapter.Adapter = (*Adapter)(nil)
