package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/statboard/server"
)

func newServeCmd(a *app) *cobra.Command {
	var noSaved bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}
			cfg := server.Config{
				Store:     st,
				Logger:    a.logger,
				Engine:    a.cfg.EngineOptions(),
				Addr:      a.cfg.Listen,
				ShareBase: a.cfg.ShareBase,
			}
			if !noSaved {
				if cfg.Saved, err = a.saved(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg).Serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&noSaved, "no-saved", false, "Do not open the saved graphs database")
	return cmd
}
