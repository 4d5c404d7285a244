package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	visio "github.com/Therealkorris/MCP"
	httpadapter "github.com/Therealkorris/MCP/pkg/adapters/http"
	"github.com/Therealkorris/MCP/pkg/relay"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long:  `Starts the bridge in HTTP server mode, exposing the same JSON API as the automation host plus /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Serve.HTTPAddr = addr
		}

		logger := newLogger(cfg)

		registry := prometheus.NewRegistry()
		metrics := relay.NewMetrics(registry)

		bridge, err := buildBridge(cfg, logger, visio.WithMetrics(metrics))
		if err != nil {
			return err
		}

		handler := httpadapter.NewHandler(bridge, logger, registry)

		srv := &http.Server{
			Addr:    cfg.Serve.HTTPAddr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting HTTP server", "addr", srv.Addr, "relay", cfg.Relay.URL)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return err

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return err
				}
			}
			logger.Info("HTTP server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, overrides the config file")
}
