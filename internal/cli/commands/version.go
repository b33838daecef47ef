package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display QueryKit version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryKit v%s\n", version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Typed SQL for SQLite, DuckDB, and Postgres")
			if buildDate != "" && buildDate != "unknown" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", buildDate)
			}
			if gitCommit != "" && gitCommit != "unknown" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", gitCommit)
			}
		},
	}
}
