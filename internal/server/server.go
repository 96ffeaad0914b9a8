// Package server exposes the content folder and viewer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/metrics"
	"github.com/sha1n/docshelf/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Config holds the dependencies of the HTTP server.
type Config struct {
	Library *library.Service

	// MCPServer is mounted at /sse when set.
	MCPServer *mcp.Server

	// Metrics and Gatherer enable request metrics and /metrics.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Assets defaults to the public dir from settings, or the embedded viewer.
	Assets fs.FS

	Logger *slog.Logger
}

// Server is the viewer HTTP server.
type Server struct {
	library  *library.Service
	mcp      *mcp.Server
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	assets   fs.FS
	logger   *slog.Logger
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Library == nil {
		return nil, fmt.Errorf("library cannot be nil")
	}

	s := &Server{
		library:  cfg.Library,
		mcp:      cfg.MCPServer,
		metrics:  cfg.Metrics,
		gatherer: cfg.Gatherer,
		assets:   cfg.Assets,
		logger:   cfg.Logger,
	}
	if s.assets == nil {
		s.assets = web.Assets(cfg.Library.Settings().PublicDir)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
// Order: CORS -> Recovery -> RequestLogging -> Metrics -> routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /list", s.handleList)
	mux.HandleFunc("GET /file", s.handleFile)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.gatherer))
	}

	if s.mcp != nil {
		// Factory function returns the server instance for each request
		sse := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
			return s.mcp
		}, nil)
		// Method-qualified so the patterns do not conflict with "GET /"
		mux.Handle("GET /sse", sse)
		mux.Handle("POST /sse", sse)
	}

	mux.Handle("GET /", http.FileServerFS(s.assets))

	var handler http.Handler = mux
	handler = Metrics(s.metrics)(handler)
	handler = RequestLogging(s.logger)(handler)
	handler = Recovery(s.logger)(handler)

	origins := s.library.Settings().CORS.AllowedOrigins
	if len(origins) == 0 {
		// No CORS headers without configured origins
		return handler
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(handler)
}

// NewHTTPServer creates the http.Server bound to the configured host and port.
func (s *Server) NewHTTPServer() *http.Server {
	settings := s.library.Settings()
	return &http.Server{
		Addr:        net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port)),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// SSE streams stay open; a write deadline would cut them off.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.NewHTTPServer()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	return s.Serve(ctx, srv, ln)
}

// Serve serves srv on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	s.logger.Info("Server listening (HTTP)",
		"addr", ln.Addr().String(),
		"content_folder", s.library.Root(),
		"mcp", s.mcp != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
