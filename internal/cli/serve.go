package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/KruASe76/look/internal/services"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API and the facet invalidation listener. Runs until
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting look services...", "addr", cfg.Server.Addr(), "transport", cfg.PubSub.Transport)
	rt := newRuntime(cfg, services.Options{RunAPI: true})
	if err := rt.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := rt.Start(ctx); err != nil {
		rt.Shutdown(context.Background())
		return fmt.Errorf("failed to start services: %w", err)
	}

	<-ctx.Done()
	slog.Info("Shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	rt.Shutdown(shutdownCtx)

	slog.Info("All services stopped.")
	return nil
}
