package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chriscow/musickly/internal/config"
	"github.com/chriscow/musickly/internal/flow"
	"github.com/chriscow/musickly/internal/metrics"
	"github.com/chriscow/musickly/internal/server"
	"github.com/chriscow/musickly/pkg/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		logger := setupLogger(cfg.Logging)
		logger.Info("Starting server",
			slog.String("service", "musickly"),
			slog.String("version", version.Version),
			slog.String("commit", version.GitCommit),
			slog.String("address", cfg.Server.Address))

		providers, err := flow.ProvidersFromConfig(cfg.Providers)
		if err != nil {
			return err
		}

		m := metrics.New(prometheus.DefaultRegisterer)
		svc := flow.NewService(providers, flow.OptionsFromConfig(cfg.Flows), logger, m)
		srv := server.New(cfg.Server, svc, logger, m, prometheus.DefaultGatherer)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := srv.Run(ctx); err != nil {
			logger.Error("Server failed", slog.String("error", err.Error()))
			return err
		}
		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
}
