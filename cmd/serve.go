package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/casedash/internal/geo"
	logpkg "github.com/KaramelBytes/casedash/internal/log"
	"github.com/KaramelBytes/casedash/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveLogJSON bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and its JSON API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveLogJSON {
			logpkg.SetupWriter(os.Stderr, true, debug, quiet)
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		legacy, summary, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		opt, err := dashboardOptions()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.NewServer(server.Config{
			Addr:       addr,
			FormAction: c.FormAction,
			NameField:  c.BoundaryNameField,
			Options:    opt,
		}, legacy, summary, geo.NewSource(c.BoundarySource, c.HTTPTimeout()), Version)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case sig := <-sigCh:
				slog.Info("received shutdown signal", "signal", sig)
				cancel()
			case <-ctx.Done():
			}
		}()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("casedash is ready", "addr", addr, "legacy_rows", legacy.Len(), "summary_rows", summary.Len())
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		slog.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
			return err
		}
		slog.Info("casedash shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "emit JSON logs")
}
