package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumbler/internal/api"
)

func newServeCommand(env *Env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API over HTTP",
		Long: `Serve the configured models over a read-only JSON API:

  GET /healthz
  GET /models
  GET /models/{model}
  GET /models/{model}/entries
  GET /models/{model}/entries/{key}
  GET /models/{model}/resolve?key=...&strict=true&case_sensitive=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := env.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return api.NewServer(cat, env.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.host:server.port)")

	return cmd
}
