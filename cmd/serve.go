package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/irtcat/internal/api"
	"github.com/abhisek/irtcat/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP scoring server",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		d, err := buildDeps(cmd, reg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		if host, _ := cmd.Flags().GetString("host"); host != "" {
			d.cfg.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			d.cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		srv, err := api.NewServer(d.service, d.logger, &d.cfg.Server,
			api.WithPrometheus(reg, metrics.NewHTTP(reg)))
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}

		d.logger.Info("Starting irtcat",
			zap.String("addr", d.cfg.Server.Addr()),
			zap.Bool("event_log", d.store != nil),
			zap.Duration("shutdown_timeout", d.cfg.Server.ShutdownTimeout))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			d.logger.Info("Received shutdown signal, shutting down gracefully")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		d.logger.Info("Server shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides server.port)")
}
