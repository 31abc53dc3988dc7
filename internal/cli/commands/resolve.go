package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumbler/internal/cli/ui"
	"github.com/conduit-lang/enumbler/internal/enumble"
)

func newResolveCommand(env *Env) *cobra.Command {
	var (
		caseSensitive bool
		strict        bool
		idsOnly       bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <model> <key>...",
		Short: "Resolve ids, names or labels to entries",
		Long: `Resolve each key against a model's entries.

Numeric keys match ids. Other keys match a label or a name, ignoring case
unless --case-sensitive is set. Repeated keys are resolved once.

With --strict the first key that does not resolve is an error; otherwise
unresolved keys are shown as "-".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := env.load()
			if err != nil {
				return err
			}
			regs, err := env.selectModels(cat, args[:1])
			if err != nil {
				return err
			}
			resolver := regs[0].Resolver().CaseSensitive(caseSensitive)

			raw := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				raw = append(raw, a)
			}
			keys := enumble.Keys(raw...)

			var found []*enumble.Entry
			if strict {
				found, err = resolver.FindStrict(raw...)
				if err != nil {
					return err
				}
			} else {
				found = resolver.Find(raw...)
			}

			out := cmd.OutOrStdout()
			if idsOnly {
				for _, e := range found {
					if e == nil {
						fmt.Fprintln(out, "-")
						continue
					}
					fmt.Fprintln(out, e.ID())
				}
				return nil
			}

			table := ui.NewTable(out, env.NoColor, "KEY", "ID", "NAME", "LABEL")
			for i, e := range found {
				if e == nil {
					table.AddRow(keys[i].String(), "-", "-", "-")
					continue
				}
				table.AddRow(keys[i].String(), strconv.Itoa(e.ID()), e.Name().String(), e.Label())
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match labels and names exactly")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first key that does not resolve")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Print only ids, one per line")

	return cmd
}
