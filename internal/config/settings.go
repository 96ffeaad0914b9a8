package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Transport constants
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Log format constants
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// EnvPrefix is the prefix of every environment variable read by LoadSettings.
const EnvPrefix = "DOCSHELF"

var themeColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ViewerSettings configuration surfaced to the viewer page
type ViewerSettings struct {
	AppTitle   string `mapstructure:"app_title"`
	ThemeColor string `mapstructure:"theme_color"`
}

// Validate checks the viewer settings.
func (v ViewerSettings) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.AppTitle, validation.Required),
		validation.Field(&v.ThemeColor,
			validation.Required,
			validation.Match(themeColorPattern).Error("must be a #rgb or #rrggbb color"),
		),
	)
}

// CORSSettings configuration for cross-origin requests
type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchSettings configuration for full-text search
type SearchSettings struct {
	Enabled     bool  `mapstructure:"enabled"`
	MaxResults  int   `mapstructure:"max_results"`
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// Validate checks the search settings. Limits are ignored when search is disabled.
func (s SearchSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MaxResults, validation.When(s.Enabled, validation.Required, validation.Min(1))),
		validation.Field(&s.MaxFileSize, validation.When(s.Enabled, validation.Required, validation.Min(int64(1)))),
	)
}

// ExportSettings configuration for the static exporter
type ExportSettings struct {
	OutputDir   string        `mapstructure:"output_dir"`
	Concurrency int           `mapstructure:"concurrency"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// Validate checks the export settings.
func (e ExportSettings) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.OutputDir, validation.Required),
		validation.Field(&e.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&e.LockTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// LogSettings configuration for the process logger
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the log settings.
func (l LogSettings) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// Settings application settings
type Settings struct {
	Transport     string         `mapstructure:"transport"`
	Host          string         `mapstructure:"host"`
	Port          int            `mapstructure:"port"`
	ContentFolder string         `mapstructure:"content_folder"`
	PublicDir     string         `mapstructure:"public_dir"`
	Viewer        ViewerSettings `mapstructure:"viewer"`
	CORS          CORSSettings   `mapstructure:"cors"`
	Search        SearchSettings `mapstructure:"search"`
	Export        ExportSettings `mapstructure:"export"`
	Log           LogSettings    `mapstructure:"log"`
}

// flagBindings maps settings keys to CLI flag names.
var flagBindings = map[string]string{
	"transport":            "transport",
	"host":                 "host",
	"port":                 "port",
	"content_folder":       "content-folder",
	"public_dir":           "public-dir",
	"viewer.app_title":     "app-title",
	"viewer.theme_color":   "theme-color",
	"cors.allowed_origins": "cors-origins",
	"search.enabled":       "search-enabled",
	"search.max_results":   "search-max-results",
	"search.max_file_size": "search-max-file-size",
	"export.output_dir":    "output-dir",
	"export.concurrency":   "export-concurrency",
	"export.lock_timeout":  "export-lock-timeout",
	"log.level":            "log-level",
	"log.format":           "log-format",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > config file > .env file > defaults.
// The config file is taken from the "config" flag when present.
// If flags is nil, only env vars, .env and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetDefault("transport", TransportHTTP)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3000)
	v.SetDefault("content_folder", "q")
	v.SetDefault("public_dir", "")

	v.SetDefault("viewer.app_title", "Local File Viewer")
	v.SetDefault("viewer.theme_color", "#1f6feb")

	v.SetDefault("cors.allowed_origins", []string{})

	v.SetDefault("search.enabled", true)
	v.SetDefault("search.max_results", 20)
	v.SetDefault("search.max_file_size", int64(1024*1024)) // 1MB

	v.SetDefault("export.output_dir", "dist")
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.lock_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatText)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Nested keys are bound explicitly so Unmarshal sees them
	for key := range flagBindings {
		_ = v.BindEnv(key, envName(key))
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	if path := configFileFlag(flags); path != "" {
		if err := mergeConfigFile(v, expandHomeDir(path)); err != nil {
			return nil, err
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of origins if provided via env var as comma-separated string
	if originsEnv := os.Getenv(envName("cors.allowed_origins")); originsEnv != "" {
		origins := settings.CORS.AllowedOrigins
		if len(origins) == 0 || (len(origins) == 1 && strings.Contains(origins[0], ",")) {
			settings.CORS.AllowedOrigins = strings.Split(originsEnv, ",")
		}
	}
	for i := range settings.CORS.AllowedOrigins {
		settings.CORS.AllowedOrigins[i] = strings.TrimSpace(settings.CORS.AllowedOrigins[i])
	}
	settings.CORS.AllowedOrigins = filterEmptyStrings(settings.CORS.AllowedOrigins)

	settings.ContentFolder = expandHomeDir(settings.ContentFolder)
	settings.PublicDir = expandHomeDir(settings.PublicDir)
	settings.Export.OutputDir = expandHomeDir(settings.Export.OutputDir)

	return &settings, nil
}

// mergeConfigFile merges a JSON or YAML settings file into v.
func mergeConfigFile(v *viper.Viper, path string) error {
	configType := strings.TrimPrefix(filepath.Ext(path), ".")
	if configType == "" || configType == "yml" {
		configType = "yaml"
	}
	v.SetConfigType(configType)
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

func configFileFlag(flags *pflag.FlagSet) string {
	if flags == nil {
		return ""
	}
	f := flags.Lookup("config")
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// envName returns the environment variable bound to a settings key
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks the resolved settings.
// The port is only checked for the http transport; nested sections validate themselves.
func ValidateSettings(s *Settings) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Transport, validation.Required, validation.In(TransportHTTP, TransportStdio)),
		validation.Field(&s.Port, validation.When(s.Transport == TransportHTTP,
			validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&s.ContentFolder, validation.Required),
		validation.Field(&s.Viewer),
		validation.Field(&s.Search),
		validation.Field(&s.Export),
		validation.Field(&s.Log),
	)
}
