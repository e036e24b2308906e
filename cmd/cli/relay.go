package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepwake/sub-engine/internal/relay"
)

func newRelayCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve the WebSocket signaling relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rc := a.cfg.RelayConfig()
			if addr != "" {
				rc.Address = addr
			}
			return relay.NewServer(rc, a.logger(cmd.ErrOrStderr())).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides relay.address")
	return cmd
}
