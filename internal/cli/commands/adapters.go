package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/querykit/pkg/adapter"
	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewAdaptersCommand creates the adapters command.
func NewAdaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List available database adapters",
		Long: `List the registered database adapters and the SQL dialect each one
speaks: identifier quoting, parameter placeholder style, and default schema.`,
		Run: func(cmd *cobra.Command, _ []string) {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Adapter", "Placeholders", "Quoting", "Default Schema"})

			for _, name := range adapter.List() {
				d, ok := dialect.Get(name)
				if !ok {
					t.AppendRow(table.Row{name, "-", "-", "-"})
					continue
				}
				quoting := fmt.Sprintf("%sname%s", d.Identifiers.Quote, d.Identifiers.QuoteEnd)
				t.AppendRow(table.Row{d.Name, d.FormatPlaceholder(1), quoting, d.DefaultSchema})
			}
			t.Render()
		},
	}
}
