package testkit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFreePort(t *testing.T) {
	port, err := GetFreePort()
	if err != nil {
		t.Fatalf("GetFreePort failed: %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Errorf("Expected valid port, got %d", port)
	}
}

func TestGetFreePortWithAddr_Invalid(t *testing.T) {
	if _, err := getFreePortWithAddr("not-an-address"); err == nil {
		t.Error("Expected error for invalid address")
	}
}

func TestNewServeFlags(t *testing.T) {
	flags := NewServeFlags(t, ServeOptions{ContentFolder: "/docs", Port: 4321})

	tests := map[string]string{
		"port":           "4321",
		"transport":      "http",
		"host":           "localhost",
		"content-folder": "/docs",
	}
	for name, want := range tests {
		f := flags.Lookup(name)
		if f == nil {
			t.Errorf("Flag %q not registered", name)
			continue
		}
		if got := f.Value.String(); got != want {
			t.Errorf("Flag %q = %q, want %q", name, got, want)
		}
	}
}

func TestNewServeFlags_FreePort(t *testing.T) {
	flags := NewServeFlags(t, ServeOptions{})
	if port, _ := flags.GetInt("port"); port == 0 {
		t.Error("Expected a free port to be assigned")
	}
}

func TestNewExportFlags(t *testing.T) {
	flags := NewExportFlags(t, "docs", "site")
	if got, _ := flags.GetString("output-dir"); got != "site" {
		t.Errorf("output-dir = %q, want site", got)
	}
}

func TestWriteFiles(t *testing.T) {
	root := t.TempDir()
	WriteFiles(t, root, map[string]string{"a/b/c.html": "x"})

	data, err := os.ReadFile(filepath.Join(root, "a", "b", "c.html"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "x" {
		t.Errorf("Content = %q, want x", data)
	}
}
