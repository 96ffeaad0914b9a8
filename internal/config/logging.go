package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogging installs the default logger on stderr.
// Stdout is reserved for the MCP stdio transport.
func SetupLogging(s LogSettings) *slog.Logger {
	logger := NewLogger(os.Stderr, s)
	slog.SetDefault(logger)
	return logger
}

// NewLogger creates a text or JSON logger writing to w at the configured level
func NewLogger(w io.Writer, s LogSettings) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(s.Level),
	}
	var handler slog.Handler
	switch s.Format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: transport", "value", s.Transport)
	if s.Transport == TransportHTTP {
		logger.InfoContext(ctx, "Config: host", "value", s.Host)
		logger.InfoContext(ctx, "Config: port", "value", s.Port)
		if len(s.CORS.AllowedOrigins) > 0 {
			logger.InfoContext(ctx, "Config: cors.allowed_origins", "value", s.CORS.AllowedOrigins)
		}
	}

	logger.InfoContext(ctx, "Config: content_folder", "value", s.ContentFolder)
	if s.PublicDir != "" {
		logger.InfoContext(ctx, "Config: public_dir", "value", s.PublicDir)
	}
	logger.InfoContext(ctx, "Config: viewer", "app_title", s.Viewer.AppTitle, "theme_color", s.Viewer.ThemeColor)

	logger.InfoContext(ctx, "Config: search.enabled", "value", s.Search.Enabled)
	if s.Search.Enabled {
		logger.InfoContext(ctx, "Config: search.max_results", "value", s.Search.MaxResults)
		logger.InfoContext(ctx, "Config: search.max_file_size", "value", s.Search.MaxFileSize)
	}
}

// LogExportWithLogger logs the settings relevant to a static export
func LogExportWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: content_folder", "value", s.ContentFolder)
	logger.InfoContext(ctx, "Config: export.output_dir", "value", s.Export.OutputDir)
	logger.InfoContext(ctx, "Config: export.concurrency", "value", s.Export.Concurrency)
	logger.InfoContext(ctx, "Config: export.lock_timeout", "value", s.Export.LockTimeout)
}

// SettingsLogValue returns a slog.Value summarizing Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("transport", s.Transport),
		slog.String("host", s.Host),
		slog.Int("port", s.Port),
		slog.String("content_folder", s.ContentFolder),
		slog.Bool("search", s.Search.Enabled),
	)
}
