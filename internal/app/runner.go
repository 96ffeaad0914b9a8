package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sha1n/docshelf/internal/config"
	"github.com/sha1n/docshelf/internal/export"
	"github.com/sha1n/docshelf/internal/library"
	mcputil "github.com/sha1n/docshelf/internal/mcp"
	"github.com/sha1n/docshelf/internal/metrics"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the serve command
type RunParams struct {
	LoadSettings    func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings   func(*config.Settings) error
	StartHTTPServer func(context.Context, HTTPDeps) error

	// NewRegistry defaults to a registry with Go runtime and process collectors
	NewRegistry       func() *prometheus.Registry
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
	LogOutput         io.Writer     // Optional: defaults to stderr
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:    config.LoadSettingsWithFlags,
		ValidSettings:   config.ValidateSettings,
		StartHTTPServer: StartHTTPServer,
		NewRegistry:     NewRegistry,
	}
}

// NewRegistry creates a metrics registry with the runtime collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := loadValidSettings(params.LoadSettings, params.ValidSettings, flags)
	if err != nil {
		return err
	}

	logger := setupLogging(settings, params.LogOutput)
	logger.Info("Starting docshelf server", "version", version)
	config.LogWithLogger(settings, logger)

	newRegistry := params.NewRegistry
	if newRegistry == nil {
		newRegistry = prometheus.NewRegistry
	}
	reg := newRegistry()
	m := metrics.New(reg)

	lib, err := library.NewService(settings, library.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create library: %w", err)
	}

	mcpServer := CreateMCPServer(lib, version)

	if settings.Transport == config.TransportStdio {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	}

	logger.Info("Starting HTTP server", "host", settings.Host, "port", settings.Port)
	return params.StartHTTPServer(ctx, HTTPDeps{
		Library:   lib,
		MCPServer: mcpServer,
		Metrics:   m,
		Gatherer:  reg,
		Logger:    logger,
	})
}

// CreateMCPServer creates the MCP server with the document tools registered
func CreateMCPServer(lib *library.Service, version string) *mcp.Server {
	return mcputil.CreateServer(mcputil.ServerConfig{
		Name:    "docshelf",
		Version: version,
		Library: lib,
	})
}

// ExportParams contains dependencies for the export command
type ExportParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	Output        io.Writer // Summary destination, defaults to stdout
	LogOutput     io.Writer // Optional: defaults to stderr
}

// DefaultExportParams returns production dependencies
func DefaultExportParams() ExportParams {
	return ExportParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		Output:        os.Stdout,
	}
}

// RunExportWithDeps writes a static export with the provided dependencies
func RunExportWithDeps(ctx context.Context, params ExportParams, flags *pflag.FlagSet, version string) error {
	settings, err := loadValidSettings(params.LoadSettings, params.ValidSettings, flags)
	if err != nil {
		return err
	}

	logger := setupLogging(settings, params.LogOutput)
	logger.Info("Starting docshelf export", "version", version)
	config.LogExportWithLogger(settings, logger)

	lib, err := library.NewService(settings)
	if err != nil {
		return fmt.Errorf("failed to create library: %w", err)
	}

	summary, err := export.NewExporter(lib, export.Options{
		Version: version,
		Logger:  logger,
	}).Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := params.Output
	if out == nil {
		out = os.Stdout
	}
	summary.Print(out)
	return nil
}

func loadValidSettings(
	load func(*pflag.FlagSet) (*config.Settings, error),
	valid func(*config.Settings) error,
	flags *pflag.FlagSet,
) (*config.Settings, error) {
	settings, err := load(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for conflicting configurations
	if err := valid(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// setupLogging installs the process logger. Logs always go to stderr unless
// overridden; stdout carries the stdio transport and the export summary.
func setupLogging(settings *config.Settings, w io.Writer) *slog.Logger {
	if w == nil {
		return config.SetupLogging(settings.Log)
	}
	logger := config.NewLogger(w, settings.Log)
	slog.SetDefault(logger)
	return logger
}
