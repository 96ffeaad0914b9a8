package web

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbedded_ContainsViewerPages(t *testing.T) {
	assets := Embedded()

	for _, name := range []string{IndexPage, PDFViewerPage, "style.css"} {
		if _, err := fs.Stat(assets, name); err != nil {
			t.Errorf("Expected embedded asset %s: %v", name, err)
		}
	}
}

func TestEmbedded_IndexPageAnchors(t *testing.T) {
	data, err := fs.ReadFile(Embedded(), IndexPage)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	page := string(data)

	anchors := []string{
		"async function load() {",
		"iframe.src = '/file?path=' + encodeURIComponent(f.path);",
		"iframe.src = '/pdf-viewer.html?path=' + encodeURIComponent(f.path);",
		"function dfsCollect(",
		"function loadFromStorage(",
		"function updateCounts(",
		"function renderTiles(",
		"function openInViewer(",
		"fetch('/search?q=' + encodeURIComponent(text))",
		"document.getElementById('search-form').hidden = !cfg.searchEnabled;",
	}
	for _, anchor := range anchors {
		if !strings.Contains(page, anchor) {
			t.Errorf("Expected index page to contain %q", anchor)
		}
	}
}

func TestEmbedded_PDFViewerAnchor(t *testing.T) {
	data, err := fs.ReadFile(Embedded(), PDFViewerPage)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "const pdfUrl = '/file?path=' + encodeURIComponent(relPath);") {
		t.Error("Expected pdf viewer to build pdfUrl from /file")
	}
}

func TestAssets_PublicDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, IndexPage), []byte("custom"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(Assets(dir), IndexPage)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "custom" {
		t.Errorf("Expected custom index page, got %q", data)
	}
}

func TestAssets_DefaultsToEmbedded(t *testing.T) {
	if _, err := fs.Stat(Assets(""), IndexPage); err != nil {
		t.Errorf("Expected embedded index page: %v", err)
	}
}

func TestRenderView(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantSrc   string
		wantTitle string
	}{
		{"plain", "guides/ch1.html", `src="/file?path=guides%2fch1.html"`, "<title>ch1.html</title>"},
		{"needs escaping", `a b&"c".html`, `src="/file?path=a%20b%26%22c%22.html"`, "<title>a b&amp;&#34;c&#34;.html</title>"},
		{"empty", "", `src="/file?path="`, "<title>Viewer</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderView(&buf, tt.path); err != nil {
				t.Fatalf("RenderView failed: %v", err)
			}
			page := buf.String()
			if !strings.Contains(page, tt.wantSrc) {
				t.Errorf("Expected %s in page:\n%s", tt.wantSrc, page)
			}
			if !strings.Contains(page, tt.wantTitle) {
				t.Errorf("Expected %s in page:\n%s", tt.wantTitle, page)
			}
		})
	}
}
