package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/internal/script"
	"github.com/leapstack-labs/querykit/internal/watch"
	"github.com/leapstack-labs/querykit/pkg/query"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Command string
	Format  string
	Jobs    int
	Watch   bool
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [files...]",
		Short: "Run SQL scripts against the configured target",
		Long: `Run SQL scripts against the configured target.

SQL comes from script files, from -c, or from a pipe. Script files may
carry a frontmatter comment that names the script, binds positional
parameters, and pins an output format:

  /*---
  name: active-users
  params: [true]
  format: json
  ---*/
  SELECT id, name FROM users WHERE active = ?

Read-only statements render their rows; everything else reports the
affected row count. Each run is recorded in the history store.`,
		Example: `  # Run script files
  querykit exec reports/daily.sql reports/weekly.sql

  # Run inline SQL
  querykit exec -c "SELECT count(*) FROM users"

  # Pipe SQL in
  echo "SELECT 1" | querykit exec

  # Fan out across files
  querykit exec --jobs 4 reports/*.sql

  # Re-run on change
  querykit exec --watch reports/daily.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Command, "command", "c", "", "Run this SQL instead of reading files")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "Run up to N script files concurrently")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run script files when they change")

	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	if opts.Command != "" && len(args) > 0 {
		return fmt.Errorf("cannot combine -c with script files")
	}
	if opts.Watch && len(args) == 0 {
		return fmt.Errorf("--watch needs script files to watch")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Inline SQL and piped input run once and return
	switch {
	case opts.Command != "":
		sc, err := script.Parse(opts.Command)
		if err != nil {
			return err
		}
		return executeScript(cmd.Context(), cmdCtx, sc, cmd.OutOrStdout(), opts.Format, "exec")
	case len(args) == 0:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no input: pass script files, use -c, or pipe SQL in (try 'querykit repl' for an interactive shell)")
		}
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sc, err := script.Parse(string(content))
		if err != nil {
			return err
		}
		return executeScript(cmd.Context(), cmdCtx, sc, cmd.OutOrStdout(), opts.Format, "exec")
	}

	if opts.Watch {
		return watchFiles(cmd, cmdCtx, args, opts)
	}

	return runFiles(cmd.Context(), cmdCtx, args, cmd.OutOrStdout(), opts)
}

// runFiles executes every script file, fanning out up to opts.Jobs workers.
// Output is buffered per file and printed in argument order.
func runFiles(ctx context.Context, cmdCtx *CommandContext, files []string, w io.Writer, opts *ExecOptions) error {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	outputs := make([]bytes.Buffer, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		g.Go(func() error {
			sc, err := script.Load(path)
			if err != nil {
				return err
			}
			if err := executeScript(gctx, cmdCtx, sc, &outputs[i], opts.Format, "exec"); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	err := g.Wait()

	// Print whatever completed, in argument order
	for i, path := range files {
		if outputs[i].Len() == 0 {
			continue
		}
		if len(files) > 1 {
			_, _ = fmt.Fprintf(w, "-- %s\n", path)
		}
		_, _ = io.Copy(w, &outputs[i])
	}
	return err
}

// watchFiles runs every file once, then re-runs a file whenever it changes.
// Errors are printed, not returned: the watch loop survives bad edits.
func watchFiles(cmd *cobra.Command, cmdCtx *CommandContext, files []string, opts *ExecOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	runOne := func(ctx context.Context, path string) {
		sc, err := script.Load(path)
		if err == nil {
			_, _ = fmt.Fprintf(out, "-- %s\n", path)
			err = executeScript(ctx, cmdCtx, sc, out, opts.Format, "exec")
		}
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}

	for _, path := range files {
		runOne(ctx, path)
	}

	watcher, err := watch.New(watch.Config{Paths: files, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(errOut, "Watching %d files, Ctrl-C to stop\n", len(files))
	return watcher.Run(ctx, runOne)
}

// executeScript runs one parsed script and renders its result. Read-only
// statements render rows; mutations report the affected row count. Either
// way the run lands in the history store under the given source.
func executeScript(ctx context.Context, cmdCtx *CommandContext, sc *script.Script, w io.Writer, explicitFormat, source string) error {
	if strings.TrimSpace(sc.SQL) == "" {
		return fmt.Errorf("empty statement")
	}

	format := resolveFormat(explicitFormat, firstNonEmpty(sc.Format, cmdCtx.Cfg.OutputFormat))

	start := time.Now()
	run := history.Run{Source: source, SQL: sc.SQL, StartedAt: start}

	if query.IsReadOnly(sc.SQL) {
		rs, err := cmdCtx.DB.RawQuery(ctx, sc.SQL, sc.Params...)
		run.Duration = time.Since(start)
		if err != nil {
			run.Error = err.Error()
			cmdCtx.Record(ctx, run)
			return err
		}
		run.RowCount = int64(rs.Len())
		cmdCtx.Record(ctx, run)
		return renderRowSet(w, rs, format)
	}

	n, err := cmdCtx.DB.RawExec(ctx, sc.SQL, sc.Params...)
	run.Duration = time.Since(start)
	if err != nil {
		run.Error = err.Error()
		cmdCtx.Record(ctx, run)
		return err
	}
	run.RowCount = n
	cmdCtx.Record(ctx, run)
	_, _ = fmt.Fprintf(w, "OK, %d rows affected\n", n)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
