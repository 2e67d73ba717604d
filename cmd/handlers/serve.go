package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"startiq/internal/config"
	"startiq/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the StartIQ HTTP API.

Endpoints:
  POST /analyse-with-ai      Startup insights and red flags
  POST /analyse-investor     Investor insights
  POST /generate-deal-note   Deal note for an investor and a startup
  POST /score-startup        Green flags and AI score
  POST /users/register       Founder, startup or investor registration
  GET  /health               Store health check
  GET  /metrics              Prometheus metrics

Examples:
  # Start server on the configured port (default 5001)
  startiq serve

  # Start on custom port
  startiq serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 5001)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	serverCfg := a.cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	if err := a.db.Ping(ctx); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}

	srv := server.New(a.db, a.services, serverCfg, a.metrics)

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info(fmt.Sprintf("Server listening on http://%s", srv.Addr()))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		a.log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ParseDuration(serverCfg.ShutdownTimeout, 10*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Server shutdown failed", "error", err)
			return err
		}

		a.log.Info("Server stopped successfully")
	}

	return nil
}
