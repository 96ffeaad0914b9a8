package app

import "github.com/spf13/pflag"

// RegisterCommonFlags registers the flags shared by every command
func RegisterCommonFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Settings file (YAML or JSON)")
	flags.StringP("content-folder", "d", "", "Folder whose HTML and PDF documents are published")
	flags.String("public-dir", "", "Folder with custom viewer assets (default: built-in viewer)")
	flags.String("app-title", "", "Title shown by the viewer")
	flags.String("theme-color", "", "Viewer accent color (#rgb or #rrggbb)")
	flags.String("log-level", "", "Log level: debug, info, warn, or error")
	flags.String("log-format", "", "Log format: text or json")
}

// RegisterServeFlags registers the flags of the serve command
func RegisterServeFlags(flags *pflag.FlagSet) {
	RegisterCommonFlags(flags)
	flags.StringP("transport", "t", "", "Transport type: http or stdio")
	flags.StringP("host", "H", "", "Host for HTTP transport")
	flags.IntP("port", "p", 0, "Port for HTTP transport")
	flags.StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")
	flags.Bool("search-enabled", true, "Enable full-text search")
	flags.Int("search-max-results", 0, "Maximum number of search results")
	flags.Int64("search-max-file-size", 0, "HTML files larger than this many bytes are searched by name only")
}

// RegisterExportFlags registers the flags of the export command
func RegisterExportFlags(flags *pflag.FlagSet) {
	RegisterCommonFlags(flags)
	flags.StringP("output-dir", "o", "", "Folder the static site is written to")
	flags.Int("export-concurrency", 0, "Maximum number of files copied concurrently")
	flags.Duration("export-lock-timeout", 0, "How long to wait for another export into the same folder")
}
