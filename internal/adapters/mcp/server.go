// Package mcpadapter exposes the record store and the client dashboard as
// assistant tools over the Model Context Protocol.
package mcpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/observability/metrics"
)

const (
	ServerName    = "airtable-mcp-server"
	ServerVersion = "1.0.0"

	metricsService = "mcp"
)

type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Option func(*settings)

type settings struct {
	metrics *metrics.ToolMetrics
	logger  *slog.Logger
}

func WithToolMetrics(m *metrics.ToolMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// NewServer registers the six record tools on a fresh MCP server.
func NewServer(records ports.RecordService, opts ...Option) *server.MCPServer {
	cfg := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, t := range tools(records) {
		def := t.Definition()
		s.AddTool(def, instrument(def.Name, t.Handle, cfg))
	}
	return s
}

// tools returns the tool set in registration order.
func tools(records ports.RecordService) []tool {
	return []tool{
		&listRecordsTool{records: records},
		&getRecordTool{records: records},
		&createRecordTool{records: records},
		&updateRecordTool{records: records},
		&deleteRecordTool{records: records},
		&clientDashboardTool{records: records},
	}
}

func instrument(name string, next server.ToolHandlerFunc, cfg settings) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		if cfg.metrics != nil {
			cfg.metrics.StartCall()
		}

		res, err := next(ctx, req)

		failed := err != nil || (res != nil && res.IsError)
		duration := time.Since(start)
		if cfg.metrics != nil {
			cfg.metrics.FinishCall(metricsService, name, duration, failed)
		}
		attrs := []any{
			"tool", name,
			"failed", failed,
			"duration_ms", float64(duration.Microseconds()) / 1000.0,
		}
		if failed {
			cfg.logger.Warn("tool_call", attrs...)
		} else {
			cfg.logger.Info("tool_call", attrs...)
		}
		return res, err
	}
}
