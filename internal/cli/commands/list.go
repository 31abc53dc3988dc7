package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumbler/internal/cli/ui"
	"github.com/conduit-lang/enumbler/internal/enumble"
)

func newListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list [model]",
		Short: "List configured models or the entries of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := env.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if cat.Len() == 0 {
					fmt.Fprint(out, ui.Warning("no models configured", env.NoColor))
					return nil
				}
				table := ui.NewTable(out, env.NoColor, "MODEL", "TABLE", "LABEL COLUMN", "ENTRIES")
				for _, reg := range cat.All() {
					m := reg.Model()
					table.AddRow(m.Name, m.Table, m.LabelColumn, strconv.Itoa(reg.Len()))
				}
				table.Render()
				return nil
			}

			regs, err := env.selectModels(cat, args)
			if err != nil {
				return err
			}
			renderEntries(cmd, env, regs[0])
			return nil
		},
	}
}

// renderEntries prints every entry of reg with its extra columns
func renderEntries(cmd *cobra.Command, env *Env, reg *enumble.Registry) {
	out := cmd.OutOrStdout()
	m := reg.Model()
	ui.Header(out, fmt.Sprintf("%s (%s)", m.Name, m.Table), env.NoColor)

	columns := extraColumns(reg)
	headers := append([]string{"ID", "NAME", strings.ToUpper(m.LabelColumn), "GRAPHQL"}, upper(columns)...)
	table := ui.NewTable(out, env.NoColor, headers...)
	for _, e := range reg.All() {
		row := []string{strconv.Itoa(e.ID()), e.Name().String(), e.Label(), e.GraphQLEnum()}
		for _, c := range columns {
			v, _ := e.Attribute(c)
			row = append(row, formatValue(v))
		}
		table.AddRow(row...)
	}
	table.Render()
}

// extraColumns returns the model's allow-list, or the union of the columns
// its entries set
func extraColumns(reg *enumble.Registry) []string {
	if cols := reg.Model().Columns; len(cols) > 0 {
		return cols
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, e := range reg.All() {
		for _, c := range e.ExtraColumns() {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				cols = append(cols, c)
			}
		}
	}
	return cols
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
