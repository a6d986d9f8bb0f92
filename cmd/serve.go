package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/marcopiovanello/yt-fetch/server"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/openid"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and RPC service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := openid.Configure(ctx); err != nil {
			return fmt.Errorf("openid: %w", err)
		}

		cfg := config.Instance()

		slog.Info("starting server",
			slog.String("host", cfg.Server.Host),
			slog.Int("port", cfg.Server.Port),
		)

		if err := server.Run(ctx); err != nil {
			return err
		}

		slog.Info("server exited cleanly")
		return nil
	},
}
