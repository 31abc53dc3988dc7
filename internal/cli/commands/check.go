package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrDrift is returned by check when a table differs from its entries
var ErrDrift = errors.New("drift detected")

func newCheckCommand(env *Env) *cobra.Command {
	var deleteMissing bool

	cmd := &cobra.Command{
		Use:   "check [model]...",
		Short: "Report tables that differ from their declared entries",
		Long: `Compare each model's table with its declared entries without writing.

Exits with an error when any table would change on seed, which makes it
usable as a CI gate. With --delete-missing, stored rows that no entry
declares also count as drift.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := env.load()
			if err != nil {
				return err
			}
			regs, err := env.selectModels(cat, args)
			if err != nil {
				return err
			}

			opts := cfg.Reconcile.Options()
			if cmd.Flags().Changed("delete-missing") {
				opts.DeleteMissing = deleteMissing
			}

			var drifted []string
			err = env.withBackend(cmd.Context(), cfg, func(backend Backend) error {
				for _, reg := range regs {
					res, err := env.reconcile(cmd.Context(), cfg, backend, reg, opts, true)
					if err != nil {
						return err
					}
					renderResult(cmd.OutOrStdout(), env, res)
					if res.Drift() {
						drifted = append(drifted, res.Model)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			if len(drifted) > 0 {
				return fmt.Errorf("%w in %s", ErrDrift, strings.Join(drifted, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteMissing, "delete-missing", false, "Count orphaned rows as drift")

	return cmd
}
