// Package testkit provides helpers for end-to-end tests against real processes.
package testkit

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sha1n/docshelf/internal/app"
	"github.com/spf13/pflag"
)

// GetFreePort returns a free port from the kernel
func GetFreePort() (int, error) {
	return getFreePortWithAddr("localhost:0")
}

// MustGetFreePort returns a free port or fails the test
func MustGetFreePort(t testing.TB) int {
	t.Helper()
	port, err := GetFreePort()
	if err != nil {
		t.Fatalf("Failed to get free port: %v", err)
	}
	return port
}

func getFreePortWithAddr(addrStr string) (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", addrStr)
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// WriteFiles creates files below root from a map of slash-separated paths to contents
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
}

// ServeOptions configures NewServeFlags
type ServeOptions struct {
	ContentFolder string
	Port          int    // Uses free port if 0
	Transport     string // Defaults to "http"
	Host          string // Defaults to "localhost"
}

// NewServeFlags creates a configured serve FlagSet for testing
func NewServeFlags(t testing.TB, opts ServeOptions) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	app.RegisterServeFlags(flags)

	if opts.Port == 0 {
		opts.Port = MustGetFreePort(t)
	}
	if opts.Transport == "" {
		opts.Transport = "http"
	}
	if opts.Host == "" {
		opts.Host = "localhost"
	}

	_ = flags.Set("port", fmt.Sprintf("%d", opts.Port))
	_ = flags.Set("transport", opts.Transport)
	_ = flags.Set("host", opts.Host)
	_ = flags.Set("content-folder", opts.ContentFolder)

	return flags
}

// NewExportFlags creates a configured export FlagSet for testing
func NewExportFlags(t testing.TB, contentFolder, outputDir string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
	app.RegisterExportFlags(flags)
	_ = flags.Set("content-folder", contentFolder)
	_ = flags.Set("output-dir", outputDir)

	return flags
}

// WaitForHTTP polls url until it answers 200 or the timeout expires
func WaitForHTTP(t testing.TB, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s not ready after %v", url, timeout)
}
