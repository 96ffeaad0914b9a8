package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docshelf/internal/config"
	"github.com/spf13/pflag"
)

// noopValidate is a no-op validation function for tests
func noopValidate(*config.Settings) error {
	return nil
}

func testSettings(t *testing.T, transport string) *config.Settings {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.html"), []byte("<p>a</p>"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return &config.Settings{
		Transport:     transport,
		Host:          "127.0.0.1",
		Port:          8080,
		ContentFolder: root,
		Viewer:        config.ViewerSettings{AppTitle: "Shelf", ThemeColor: "#000"},
		Search:        config.SearchSettings{Enabled: true, MaxResults: 5, MaxFileSize: 1024},
		Export: config.ExportSettings{
			OutputDir:   filepath.Join(filepath.Dir(root), "site"),
			Concurrency: 2,
			LockTimeout: time.Second,
		},
		Log: config.LogSettings{Level: "info", Format: config.LogFormatText},
	}
}

func loadFixed(s *config.Settings) func(*pflag.FlagSet) (*config.Settings, error) {
	return func(*pflag.FlagSet) (*config.Settings, error) {
		return s, nil
	}
}

func TestRunWithDeps_ErrorCases(t *testing.T) {
	tests := []struct {
		name           string
		params         RunParams
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				},
				ValidSettings: noopValidate,
			},
			wantErrContain: "failed to load settings",
		},
		{
			name: "ValidSettings error",
			params: RunParams{
				LoadSettings: loadFixed(&config.Settings{Transport: "sse"}),
				ValidSettings: func(*config.Settings) error {
					return errors.New("validation error")
				},
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "StartHTTPServer error",
			params: RunParams{
				LoadSettings:  loadFixed(testSettings(t, config.TransportHTTP)),
				ValidSettings: noopValidate,
				StartHTTPServer: func(context.Context, HTTPDeps) error {
					return errors.New("http start error")
				},
			},
			wantErrContain: "http start error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.LogOutput = &bytes.Buffer{}
			err := RunWithDeps(context.Background(), tt.params, nil, "test")
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErrContain)
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErrContain, err.Error())
			}
		})
	}
}

func TestRunWithDeps_HTTPDeps(t *testing.T) {
	var got HTTPDeps
	logs := &bytes.Buffer{}
	params := RunParams{
		LoadSettings:  loadFixed(testSettings(t, config.TransportHTTP)),
		ValidSettings: noopValidate,
		StartHTTPServer: func(_ context.Context, deps HTTPDeps) error {
			got = deps
			return nil
		},
		LogOutput: logs,
	}

	if err := RunWithDeps(context.Background(), params, nil, "1.2.3"); err != nil {
		t.Fatalf("RunWithDeps failed: %v", err)
	}

	if got.Library == nil || got.MCPServer == nil || got.Metrics == nil || got.Gatherer == nil || got.Logger == nil {
		t.Fatalf("Expected every HTTP dependency to be set, got %+v", got)
	}
	if !got.Library.SearchEnabled() {
		t.Error("Expected search to be enabled")
	}
	if !strings.Contains(logs.String(), "version=1.2.3") {
		t.Errorf("Expected startup log with version, got:\n%s", logs.String())
	}

	srv, err := NewHTTPServer(got)
	if err != nil {
		t.Fatalf("NewHTTPServer failed: %v", err)
	}
	if addr := srv.NewHTTPServer().Addr; addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want 127.0.0.1:8080", addr)
	}
}

func TestDefaultRunParams(t *testing.T) {
	params := DefaultRunParams()

	if params.LoadSettings == nil {
		t.Error("LoadSettings is nil")
	}
	if params.ValidSettings == nil {
		t.Error("ValidSettings is nil")
	}
	if params.StartHTTPServer == nil {
		t.Error("StartHTTPServer is nil")
	}
	if params.NewRegistry == nil {
		t.Error("NewRegistry is nil")
	}
}

func TestNewRegistry(t *testing.T) {
	families, err := NewRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "go_goroutines" {
			found = true
		}
	}
	if !found {
		t.Error("Expected Go runtime metrics in registry")
	}
}

func TestRunWithDeps_StdioWithCustomTransport(t *testing.T) {
	transportUsed := false
	customTransport := &mockTransport{
		connectCalled: &transportUsed,
	}

	params := RunParams{
		LoadSettings:      loadFixed(testSettings(t, config.TransportStdio)),
		ValidSettings:     noopValidate,
		CustomIOTransport: customTransport,
		LogOutput:         &bytes.Buffer{},
	}

	// Use a cancelled context to avoid hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = RunWithDeps(ctx, params, nil, "test")

	if !transportUsed {
		t.Error("Custom transport Connect was not called")
	}
}

func TestCreateMCPServer(t *testing.T) {
	if server := CreateMCPServer(nil, "test"); server == nil {
		t.Error("Expected server to be created")
	}
}

func TestRunExportWithDeps(t *testing.T) {
	settings := testSettings(t, config.TransportHTTP)
	out := &bytes.Buffer{}
	params := ExportParams{
		LoadSettings:  loadFixed(settings),
		ValidSettings: config.ValidateSettings,
		Output:        out,
		LogOutput:     &bytes.Buffer{},
	}

	if err := RunExportWithDeps(context.Background(), params, nil, "1.2.3"); err != nil {
		t.Fatalf("RunExportWithDeps failed: %v", err)
	}

	if !strings.Contains(out.String(), "Export complete") {
		t.Errorf("Expected summary output, got:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(settings.Export.OutputDir, "docs", "a.html")); err != nil {
		t.Errorf("Expected exported document: %v", err)
	}
}

func TestRunExportWithDeps_Errors(t *testing.T) {
	missing := testSettings(t, config.TransportHTTP)
	missing.ContentFolder = filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name           string
		params         ExportParams
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			params: ExportParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				},
				ValidSettings: noopValidate,
			},
			wantErrContain: "failed to load settings",
		},
		{
			name: "invalid settings",
			params: ExportParams{
				LoadSettings:  loadFixed(&config.Settings{}),
				ValidSettings: config.ValidateSettings,
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "missing content folder",
			params: ExportParams{
				LoadSettings:  loadFixed(missing),
				ValidSettings: noopValidate,
			},
			wantErrContain: "export failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Output = &bytes.Buffer{}
			tt.params.LogOutput = &bytes.Buffer{}
			err := RunExportWithDeps(context.Background(), tt.params, nil, "test")
			if err == nil || !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErrContain, err)
			}
		})
	}
}

func TestDefaultExportParams(t *testing.T) {
	params := DefaultExportParams()
	if params.LoadSettings == nil || params.ValidSettings == nil || params.Output == nil {
		t.Errorf("Expected production dependencies, got %+v", params)
	}
}

// mockTransport implements mcp.Transport for testing
type mockTransport struct {
	connectCalled *bool
}

func (m *mockTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	if m.connectCalled != nil {
		*m.connectCalled = true
	}
	return nil, errors.New("mock transport - no real connection")
}
