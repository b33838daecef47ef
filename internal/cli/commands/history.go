package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the run history",
		Long: `Inspect the run-history store.

Every statement executed through exec, the shell, or the gateway is
recorded with its SQL text, row count, duration, and outcome.`,
		Example: `  # List the most recent runs
  querykit history list

  # Show the full record of one run
  querykit history show 3f2a8c1e

  # Drop all recorded runs
  querykit history clear`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, 20)
		},
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the full record of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "ID:       %s\n", run.ID)
			_, _ = fmt.Fprintf(w, "Source:   %s\n", run.Source)
			_, _ = fmt.Fprintf(w, "Dialect:  %s\n", run.Dialect)
			_, _ = fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
			_, _ = fmt.Fprintf(w, "Duration: %s\n", run.Duration)
			_, _ = fmt.Fprintf(w, "Rows:     %d\n", run.RowCount)
			if run.Error != "" {
				_, _ = fmt.Fprintf(w, "Error:    %s\n", run.Error)
			}
			_, _ = fmt.Fprintf(w, "\n%s\n", run.SQL)
			return nil
		},
	}
}

func newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", n)
			return nil
		},
	}
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Source", "Started", "Duration", "Rows", "SQL"})

	for _, run := range runs {
		status := summarizeSQL(run.SQL)
		if run.Error != "" {
			status = "ERROR: " + summarizeSQL(run.Error)
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Source,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Duration.Round(time.Millisecond),
			run.RowCount,
			status,
		})
	}
	t.Render()
	return nil
}

// openHistory opens the configured history store for direct inspection,
// without connecting to the query target.
func openHistory() (*history.Store, error) {
	cfg := getConfig()
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("run history is disabled (set history.enabled in querykit.yaml)")
	}
	return history.Open(cfg.History.Path)
}

// shortID returns the first ID segment, enough to address a run from the
// list view.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// summarizeSQL collapses whitespace and truncates for the list view.
func summarizeSQL(sqlText string) string {
	s := strings.Join(strings.Fields(sqlText), " ")
	const max = 48
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
