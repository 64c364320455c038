package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/axiomhq/bytesize/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compression over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l, err := net.Listen("tcp", a.cfg.Server.Address)
			if err != nil {
				return err
			}
			return server.New(a.engine, a.cfg.Server, a.log).Serve(ctx, l)
		},
	}
	cmd.Flags().String("address", "", "Address to listen on")
	cmd.Flags().Duration("engine-cache-ttl", 0, "How long engines for per-request custom words are cached")
	if err := bindFlags(a.v, cmd.Flags(), map[string]string{
		"server.address":          "address",
		"server.engine_cache_ttl": "engine-cache-ttl",
	}); err != nil {
		panic(err)
	}
	return cmd
}
