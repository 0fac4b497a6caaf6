package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/memstore/internal/network"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP",
		Long: `Start the HTTP/JSON API. The server shuts down gracefully on SIGINT or
SIGTERM and, with --save-on-exit, writes a snapshot before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Duration("shutdown-timeout", 0, "Graceful shutdown timeout (default 10s)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg := GetConfig(cmd.Context())

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	srv := network.NewHTTPServer(eng)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return srv.Start(cfg.HTTP.Addr)
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		slog.Warn("received shutdown signal!")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP server", "error", err)
			return err
		}
		slog.Info("successfully shutdown HTTP server")
		return nil
	})

	serveErr := eg.Wait()
	if err := saveOnExit(cfg, eng); err != nil {
		if serveErr != nil {
			slog.Error("snapshot not saved", "error", err)
			return serveErr
		}
		return err
	}
	return serveErr
}
