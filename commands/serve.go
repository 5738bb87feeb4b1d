package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgelabs/promptforge/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := newStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			pipeline := newPipeline(a, store)
			srv := server.New(pipeline, store, nil, a.logger)

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
