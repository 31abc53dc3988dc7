package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumbler/internal/catalog"
	"github.com/conduit-lang/enumbler/internal/cli/ui"
	"github.com/conduit-lang/enumbler/internal/config"
	"github.com/conduit-lang/enumbler/internal/enumble"
	"github.com/conduit-lang/enumbler/internal/reconcile"
	"github.com/conduit-lang/enumbler/internal/store/sqlstore"
)

// ErrAborted is returned when the user declines a confirmation
var ErrAborted = errors.New("aborted")

type seedFlags struct {
	deleteMissing bool
	noValidate    bool
	yes           bool
	dryRun        bool
}

func newSeedCommand(env *Env) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "seed [model]...",
		Short: "Write declared entries to their tables",
		Long: `Upsert every declared entry into its model's table, by id.

With --delete-missing every id from 1 up to the highest declared or stored
id is visited, and stored rows that no entry declares are deleted. Deleting
asks for confirmation unless --yes is given.

On SQL stores each model is seeded in its own transaction when
reconcile.atomic is set.`,
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
				opts.DeleteMissing = flags.deleteMissing
			}
			if flags.noValidate {
				opts.Validate = false
			}

			if opts.DeleteMissing && !flags.yes && !flags.dryRun {
				ok, err := env.Confirm(fmt.Sprintf("Delete rows of %s that no entry declares?", modelNames(regs)))
				if err != nil {
					return err
				}
				if !ok {
					return ErrAborted
				}
			}

			return env.withBackend(cmd.Context(), cfg, func(backend Backend) error {
				for _, reg := range regs {
					res, err := env.reconcile(cmd.Context(), cfg, backend, reg, opts, flags.dryRun)
					if err != nil {
						return err
					}
					renderResult(cmd.OutOrStdout(), env, res)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flags.deleteMissing, "delete-missing", false, "Delete stored rows that no entry declares")
	cmd.Flags().BoolVar(&flags.noValidate, "no-validate", false, "Skip store validation on save")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report changes without writing")

	return cmd
}

// withBackend opens the configured backend for the duration of fn
func (e *Env) withBackend(ctx context.Context, cfg *config.Config, fn func(Backend) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := e.OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(backend)
}

// reconcile runs or plans one registry against its table
func (e *Env) reconcile(ctx context.Context, cfg *config.Config, backend Backend, reg *enumble.Registry, opts reconcile.Options, dryRun bool) (*reconcile.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := backend.Store(catalog.SchemaFor(reg))
	if err != nil {
		return nil, err
	}

	if dryRun {
		return reconcile.New(st, e.Logger).Plan(ctx, reg, opts)
	}

	sq, ok := st.(*sqlstore.Store)
	if !ok || !cfg.Reconcile.Atomic {
		return reconcile.New(st, e.Logger).Reconcile(ctx, reg, opts)
	}

	var res *reconcile.Result
	err = sq.WithTransaction(ctx, func(tx *sqlstore.Store) error {
		var err error
		res, err = reconcile.New(tx, e.Logger).Reconcile(ctx, reg, opts)
		return err
	})
	return res, err
}

// renderResult prints a run summary
func renderResult(out io.Writer, env *Env, res *reconcile.Result) {
	ui.Header(out, res.Model, env.NoColor)
	kv := ui.NewKeyValueTable(out, env.NoColor)
	kv.AddRow("table", res.Table)
	kv.AddRow("run id", res.RunID)
	kv.AddRow("created", formatIDs(res.Created))
	kv.AddRow("updated", formatIDs(res.Updated))
	kv.AddRow("unchanged", formatIDs(res.Unchanged))
	kv.AddRow("orphaned", formatIDs(res.Orphaned))
	kv.AddRow("deleted", formatIDs(res.Deleted))
	kv.Render()

	switch {
	case res.DryRun && res.Drift():
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("%s has pending changes", res.Model), env.NoColor))
	case res.DryRun:
		ui.WriteSuccess(out, fmt.Sprintf("%s is in sync", res.Model), env.NoColor)
	default:
		ui.WriteSuccess(out, fmt.Sprintf("seeded %s", res.Model), env.NoColor)
	}
	fmt.Fprintln(out)
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func modelNames(regs []*enumble.Registry) string {
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = reg.Model().Name
	}
	return strings.Join(names, ", ")
}
