package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/fastpass/internal/app"
	httpserver "github.com/dropDatabas3/fastpass/internal/http"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

func newServeCmd(o *rootOpts) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servicio HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := o.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			c, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.L().Warn("close failed", logger.Err(err))
				}
			}()

			srv := httpserver.NewServer(httpserver.ServerConfig{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     durOr(cfg.Server.ReadTimeout, 10*time.Second),
				WriteTimeout:    durOr(cfg.Server.WriteTimeout, 30*time.Second),
				ShutdownTimeout: durOr(cfg.Server.ShutdownTimeout, 15*time.Second),
			}, c.Handler)

			return srv.Run(ctx, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa server.addr)")
	return cmd
}
