package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/verticalview/client-portal/internal/adapters/mcp"
	"github.com/verticalview/client-portal/internal/bootstrap"
	"github.com/verticalview/client-portal/internal/config"
	"github.com/verticalview/client-portal/internal/observability/logging"
	"github.com/verticalview/client-portal/internal/observability/metrics"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	cfg := config.Load()
	// stdout carries the protocol.
	logger := logging.NewJSONLogger(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	toolMetrics := metrics.NewToolMetrics("mcp")
	app, err := bootstrap.New(ctx, cfg, bootstrap.SiteMCP, logger, toolMetrics)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		return 1
	}
	defer app.Close()

	if cfg.MCPMetricsPort != "" {
		metricsServer := &http.Server{
			Addr:              ":" + cfg.MCPMetricsPort,
			Handler:           toolMetrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics_server_failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	s := mcpadapter.NewServer(app.Records, mcpadapter.WithToolMetrics(toolMetrics), mcpadapter.WithLogger(logger))
	logger.Info("mcp_serving_stdio", "name", mcpadapter.ServerName, "version", mcpadapter.ServerVersion)
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		return 1
	}
	return 0
}
