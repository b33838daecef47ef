// Package cli provides the command-line interface for QueryKit.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/querykit/internal/cli/commands"
	"github.com/leapstack-labs/querykit/internal/cli/config"
	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "querykit",
		Short: "QueryKit - Typed SQL query toolkit",
		Long: `QueryKit builds, rewrites, and executes SQL from typed expression trees,
returning results as detached scrollable row sets.

It ships a script runner, an interactive shell, a run-history store, and an
HTTP gateway, speaking SQLite, DuckDB, and Postgres through one dialect
layer.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration merged with CLI flags
			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Build the logger commands retrieve from the context
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Typed SQL for SQLite, DuckDB, and Postgres
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./querykit.yaml)")
	rootCmd.PersistentFlags().StringP("adapter", "a", "", "Database adapter (sqlite|duckdb|postgres)")
	rootCmd.PersistentFlags().String("db", "", "Database path or name (empty for in-memory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for adapter flag
	_ = rootCmd.RegisterFlagCompletionFunc("adapter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.List(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))
	rootCmd.AddCommand(commands.NewExecCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewAdaptersCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Target:  &config.TargetConfig{Type: config.DefaultTargetType},
		History: config.HistoryConfig{Enabled: true, Path: config.DefaultHistoryPath},
		Gateway: config.GatewayConfig{Addr: config.DefaultGatewayAddr},
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for QueryKit.

To load completions:

Bash:
  $ source <(querykit completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ querykit completion bash > /etc/bash_completion.d/querykit
  # macOS:
  $ querykit completion bash > $(brew --prefix)/etc/bash_completion.d/querykit

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ querykit completion zsh > "${fpath[1]}/_querykit"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ querykit completion fish | source

  # To load completions for each session, execute once:
  $ querykit completion fish > ~/.config/fish/completions/querykit.fish

PowerShell:
  PS> querykit completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> querykit completion powershell > querykit.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
