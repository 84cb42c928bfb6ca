package main

import (
	"os/signal"
	"syscall"

	"contenthub-service/internal/app"
	"contenthub-service/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.NewServer(cfg, logger).Start(ctx); err != nil {
				logger.Error("server failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
