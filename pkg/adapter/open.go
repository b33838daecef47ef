package adapter

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/querykit/pkg/query"
)

// OpenDatabase connects the adapter selected by cfg and wraps the pool as a
// query.Database speaking the adapter's dialect. The returned closer
// releases the connection pool.
func OpenDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*query.Database, func() error, error) {
	a, err := NewAdapter(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, nil, err
	}
	var opts []query.Option
	if logger != nil {
		opts = append(opts, query.WithLogger(logger))
	}
	return query.NewDatabase(a.DB(), a.Dialect(), opts...), a.Close, nil
}
