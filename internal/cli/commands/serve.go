package commands

import (
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/querykit/internal/cli/config"
	"github.com/leapstack-labs/querykit/internal/gateway"
	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query gateway",
		Long: `Start the HTTP gateway in front of the configured target.

The gateway exposes read-only queries on POST /v1/query, mutations on
POST /v1/exec, and identifier-safe row counts on GET /v1/tables/{table}/count.
It runs until interrupted and shuts down gracefully.`,
		Example: `  # Serve the configured target on the default address
  querykit serve

  # Bind a specific address
  querykit serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, closeDB, err := adapter.OpenDatabase(ctx, cfg.Target.AdapterConfig(), logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeDB() }()

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg.History.Path)
				if err != nil {
					logger.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
				} else {
					defer func() { _ = store.Close() }()
				}
			}

			if addr == "" {
				addr = cfg.Gateway.Addr
			}

			srv := gateway.NewServer(gateway.Config{
				DB:      db,
				History: store,
				Addr:    addr,
				Logger:  logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8765)")

	return cmd
}
