package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/querykit/internal/script"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Aliases: []string{"shell"},
		Short:   "Interactive SQL shell",
		Long: `Open an interactive SQL shell against the configured target.

Statements end with a semicolon and may span lines. Dot-commands control
the session; tab completes table names. Every statement is recorded in
the run history.`,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	// Session history lives next to the run-history store
	historyFile := filepath.Join(cmdCtx.Cfg.ProjectRoot, ".querykit", "repl_history")
	_ = os.MkdirAll(filepath.Dir(historyFile), 0750)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "querykit> ",
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(ctx, cmdCtx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sess := &replSession{
		cmdCtx: cmdCtx,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: resolveFormat("", cmdCtx.Cfg.OutputFormat),
	}

	_, _ = fmt.Fprintf(sess.out, "QueryKit shell (%s)\n", cmdCtx.Cfg.Target.Type)
	_, _ = fmt.Fprintln(sess.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sess.out)

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("querykit> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") && multiLineBuffer.Len() == 0 {
			if quit := sess.handleDotCommand(ctx, line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("     ...> ")
			continue
		}
		rl.SetPrompt("querykit> ")

		stmt := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		sess.runStatement(ctx, stmt)
		_, _ = fmt.Fprintln(sess.out)
	}

	return nil
}

// replSession holds the mutable state of one shell session.
type replSession struct {
	cmdCtx *CommandContext
	out    io.Writer
	errOut io.Writer
	format string
	timer  bool
}

func (s *replSession) runStatement(ctx context.Context, stmt string) {
	start := time.Now()
	err := executeScript(ctx, s.cmdCtx, &script.Script{SQL: stmt}, s.out, s.format, "repl")
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	if s.timer {
		_, _ = fmt.Fprintf(s.out, "Time: %s\n", time.Since(start).Round(time.Microsecond))
	}
}

// handleDotCommand handles a shell dot-command. Returns true when the
// session should end.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".tables":
		if err := listTableNames(ctx, s.out, s.cmdCtx.Adapter, s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			return false
		}
		if err := describeTable(ctx, s.out, s.cmdCtx.DB, parts[1], s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "Format: %s\n", s.format)
			return false
		}
		switch parts[1] {
		case "table", "json", "csv", "md":
			s.format = parts[1]
		default:
			_, _ = fmt.Fprintln(s.errOut, "Usage: .format table|json|csv|md")
		}

	case ".timer":
		if len(parts) < 2 {
			s.timer = !s.timer
		} else {
			s.timer = parts[1] == "on"
		}
		state := "off"
		if s.timer {
			state = "on"
		}
		_, _ = fmt.Fprintf(s.out, "Timer: %s\n", state)

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .tables           List tables in the target database
  .schema <name>    Show the columns of a table
  .format [fmt]     Show or set the output format (table|json|csv|md)
  .timer [on|off]   Toggle statement timing
  .clear            Clear the screen
  .quit / .exit     Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, cmdCtx *CommandContext) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	names, err := cmdCtx.Adapter.TableNames(ctx)
	if err != nil {
		// Completion is a convenience; a failed listing only loses it
		names = nil
	}
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".format"),
		readline.PcItem(".timer"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
