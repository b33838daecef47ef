package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/leapstack-labs/querykit/internal/cli/config"
	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/query"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Adapter adapter.Adapter
	DB      *query.Database
	History *history.Store
}

// NewCommandContext connects the configured target and opens the run-history
// store. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	adapterCfg := cfg.Target.AdapterConfig()
	a, err := adapter.NewAdapter(adapterCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Connect(cmd.Context(), adapterCfg); err != nil {
		return nil, nil, err
	}

	db := query.NewDatabase(a.DB(), a.Dialect(), query.WithLogger(logger))

	// History is best-effort: a broken store never blocks queries.
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
			store = nil
		}
	}

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
		_ = a.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Adapter: a,
		DB:      db,
		History: store,
	}, cleanup, nil
}

// Record stores a run in the history store. Failures are logged, never
// returned: history must not break the query path.
func (c *CommandContext) Record(ctx context.Context, run history.Run) {
	if c.History == nil {
		return
	}
	if run.Dialect == "" {
		run.Dialect = c.DB.Dialect().Name
	}
	if _, err := c.History.Record(context.WithoutCancel(ctx), run); err != nil {
		c.Logger.Warn("failed to record run", "error", err)
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Target: &config.TargetConfig{
			Type: getEnvOrDefault("QUERYKIT_TARGET_TYPE", config.DefaultTargetType),
			Path: os.Getenv("QUERYKIT_TARGET_PATH"),
		},
		History:      config.HistoryConfig{Enabled: false},
		Gateway:      config.GatewayConfig{Addr: config.DefaultGatewayAddr},
		OutputFormat: os.Getenv("QUERYKIT_OUTPUT"),
		Verbose:      os.Getenv("QUERYKIT_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
