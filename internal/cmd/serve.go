package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Digital-Shane/media-resolver/internal/metrics"
	"github.com/Digital-Shane/media-resolver/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search, lookup and URL migration over HTTP",
	Long: `Start the HTTP server. Routes:

  GET /search?q=<query>       search results with canonical ids
  GET /media/{id}[?season=]   record for a canonical id
  GET /migrate?url=<url>      canonical URL for a legacy or embed URL
  GET /healthz                liveness
  GET /metrics                Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Register(prometheus.DefaultRegisterer)

	addr := a.cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.resolver, a.migrator, a.metadata, server.WithLogger(a.logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
