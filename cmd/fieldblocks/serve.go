package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fieldblocks/components/blockapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var basePath string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the editor fetch and render endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			rt, cfg, err := opts.runtime(ctx, reg)
			if err != nil {
				return err
			}
			defer rt.Close()

			mux := http.NewServeMux()
			routes, err := blockapi.RegisterRoutes(mux, basePath, rt.Engine, blockapi.WithLogger(rt.Logger))
			if err != nil {
				return err
			}
			mux.Handle(cfg.HTTP.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			server := &http.Server{
				Addr:              cfg.HTTP.Address,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				rt.Logger.Info("fieldblocks listening", map[string]any{
					"address": cfg.HTTP.Address,
					"fetch":   routes.Fetch,
					"render":  routes.Render,
					"metrics": cfg.HTTP.MetricsPath,
				})
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			rt.Logger.Info("fieldblocks shutting down", nil)
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&basePath, "base-path", "/api/blocks", "prefix for the fetch and render routes")
	cmd.Flags().String("addr", "", "listen address")
	_ = opts.v.BindPFlag("http.address", cmd.Flags().Lookup("addr"))
	return cmd
}
