package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/zonetoken/internal/app"
	httpx "github.com/dropDatabas3/zonetoken/internal/http"
	"github.com/dropDatabas3/zonetoken/internal/http/router"
	"github.com/dropDatabas3/zonetoken/internal/observability/logger"
	"github.com/dropDatabas3/zonetoken/internal/rate"
)

func newServeCmd(opts *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (/healthz, /metrics, /v1/tokeninfo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.New(opts.cfg, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			if addr == "" {
				addr = opts.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps := router.Deps{
				Decoder: c.Decoder,
				KeySets: c.KeySets,
				Logger:  logger.Named("http"),
			}
			if rc, ok := opts.cfg.RateLimit(); ok {
				if deps.Limiter, err = rate.New(rc); err != nil {
					return err
				}
			}
			handler := router.New(deps)
			return httpx.Start(ctx, addr, handler, logger.Named("server"))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (default server.addr)")
	return cmd
}
