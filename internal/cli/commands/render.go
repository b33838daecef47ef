package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/query"
	"github.com/leapstack-labs/querykit/pkg/rowset"
	"golang.org/x/term"
)

// resolveFormat picks the output format: an explicit flag value wins, then
// the configured default, then table on a terminal and csv when piped.
func resolveFormat(explicit, configured string) string {
	if explicit != "" {
		return explicit
	}
	if configured != "" {
		return configured
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "table"
	}
	return "csv"
}

// renderRowSet writes a drained row set in the requested format.
func renderRowSet(w io.Writer, rs *rowset.RowSet, format string) error {
	cols := make([]string, len(rs.Columns()))
	for i, c := range rs.Columns() {
		cols[i] = c.Label
	}

	// Collect rows positionally so duplicate labels still render
	var results [][]any
	rs.BeforeFirst()
	for {
		ok, err := rs.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		row := make([]any, len(cols))
		for i := range cols {
			val, err := rs.Value(i + 1)
			if err != nil {
				return err
			}
			// Convert []byte to string for readability
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[i] = val
		}
		results = append(results, row)
	}

	return renderResults(w, cols, results, format)
}

func renderResults(w io.Writer, cols []string, results [][]any, format string) error {
	switch format {
	case "json":
		return renderJSON(w, cols, results)
	case "csv":
		return renderCSV(w, cols, results)
	case "md", "markdown":
		return renderMarkdown(w, cols, results)
	default:
		return renderTable(w, cols, results)
	}
}

func renderTable(w io.Writer, cols []string, results [][]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, result := range results {
		row := make(table.Row, len(cols))
		for i := range cols {
			row[i] = formatValue(result[i])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(results))
	return nil
}

func renderJSON(w io.Writer, cols []string, results [][]any) error {
	objects := make([]map[string]any, len(results))
	for i, result := range results {
		row := make(map[string]any, len(cols))
		for j, col := range cols {
			row[col] = result[j]
		}
		objects[i] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}

func renderCSV(w io.Writer, cols []string, results [][]any) error {
	// Header
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	// Rows
	for _, result := range results {
		values := make([]string, len(cols))
		for i := range cols {
			values[i] = escapeCSV(formatValue(result[i]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, results [][]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	// Separator
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for _, result := range results {
		values := make([]string, len(cols))
		for i := range cols {
			values[i] = formatValue(result[i])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// Helper functions shared with the shell

// listTableNames renders the adapter's user tables, one name per row.
func listTableNames(ctx context.Context, w io.Writer, a adapter.Adapter, format string) error {
	names, err := a.TableNames(ctx)
	if err != nil {
		return err
	}
	results := make([][]any, len(names))
	for i, name := range names {
		results[i] = []any{name}
	}
	return renderResults(w, []string{"name"}, results, format)
}

// describeTable renders the column metadata of a table by selecting an
// empty result from it. The identifier is dialect-quoted, so hostile names
// cannot smuggle SQL.
func describeTable(ctx context.Context, w io.Writer, db *query.Database, tableName, format string) error {
	stmt := fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0",
		db.Dialect().QuoteIdentifier(tableName))
	rs, err := db.RawQuery(ctx, stmt)
	if err != nil {
		return fmt.Errorf("table %q not found: %w", tableName, err)
	}

	if format == "table" {
		_, _ = fmt.Fprintf(w, "Table: %s\n", tableName)
	}
	results := make([][]any, 0, len(rs.Columns()))
	for _, c := range rs.Columns() {
		results = append(results, []any{c.Name, c.Type.String()})
	}
	return renderResults(w, []string{"column", "type"}, results, format)
}
