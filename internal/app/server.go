package app

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/metrics"
	"github.com/sha1n/docshelf/internal/server"
)

// HTTPDeps is everything the HTTP transport needs
type HTTPDeps struct {
	Library   *library.Service
	MCPServer *mcp.Server
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// StartHTTPServer serves the viewer, the API and MCP over SSE until ctx is done
func StartHTTPServer(ctx context.Context, deps HTTPDeps) error {
	srv, err := NewHTTPServer(deps)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// NewHTTPServer creates the HTTP server from its dependencies
func NewHTTPServer(deps HTTPDeps) (*server.Server, error) {
	return server.New(server.Config{
		Library:   deps.Library,
		MCPServer: deps.MCPServer,
		Metrics:   deps.Metrics,
		Gatherer:  deps.Gatherer,
		Logger:    deps.Logger,
	})
}
