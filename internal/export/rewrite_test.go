package export

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sha1n/docshelf/internal/web"
)

func readEmbedded(t *testing.T, name string) string {
	t.Helper()
	data, err := fs.ReadFile(web.Embedded(), name)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return string(data)
}

func TestIndexRewrites_EmbeddedPage(t *testing.T) {
	page := readEmbedded(t, web.IndexPage)
	now := time.UnixMilli(1700000000123)

	got, missing := applyRewrites(page, indexRewrites("my docs", now))
	if len(missing) != 0 {
		t.Fatalf("Expected every anchor to match, missing %v", missing)
	}

	for _, live := range []string{"fetch('/config')", "fetch('/list')", "'/file?path='", "'/pdf-viewer.html?path='"} {
		if strings.Contains(got, live) {
			t.Errorf("Expected %s to be rewritten", live)
		}
	}

	wants := []string{
		"fetch('./data.json')",
		"dfsCollect(data.fileTree || [], flatFiles);",
		"iframe.src = './my%20docs/' + f.path.split('/').map(encodeURIComponent).join('/');",
		"iframe.src = './pdf-viewer.html?v=1700000000123&path=' + encodeURIComponent(f.path);",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("Expected rewritten page to contain %q", want)
		}
	}

	// Code after load() is untouched
	if !strings.Contains(got, "document.getElementById('filter').addEventListener('input', renderTiles);") {
		t.Error("Expected code following load() to survive")
	}
}

func TestPDFViewerRewrites_EmbeddedPage(t *testing.T) {
	page := readEmbedded(t, web.PDFViewerPage)

	got, missing := applyRewrites(page, pdfViewerRewrites("docs"))
	if len(missing) != 0 {
		t.Fatalf("Expected pdfUrl anchor to match, missing %v", missing)
	}
	want := "const pdfUrl = './docs/' + relPath.split('/').map(encodeURIComponent).join('/');"
	if !strings.Contains(got, want) {
		t.Errorf("Expected %q in rewritten viewer:\n%s", want, got)
	}
	if strings.Contains(got, "/file?path=") {
		t.Error("Expected /file reference to be gone")
	}
}

func TestApplyRewrites_MissingAnchors(t *testing.T) {
	page := "<html><body>custom viewer</body></html>"

	got, missing := applyRewrites(page, indexRewrites("docs", time.Now()))
	if got != page {
		t.Errorf("Expected page unchanged, got %q", got)
	}
	want := []string{"load()", "document frame", "pdf frame"}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Errorf("Missing anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyRewrites_FirstMatchOnly(t *testing.T) {
	frame := "iframe.src = '/file?path=' + encodeURIComponent(f.path);"
	page := frame + "\n" + frame

	got, _ := applyRewrites(page, indexRewrites("docs", time.Now()))
	if strings.Count(got, frame) != 1 {
		t.Errorf("Expected exactly one occurrence to remain, got:\n%s", got)
	}
}

func TestApplyRewrites_ReplacementIsLiteral(t *testing.T) {
	page := "iframe.src = '/file?path=' + encodeURIComponent(f.path);"

	got, _ := applyRewrites(page, indexRewrites("$1 docs", time.Now()))
	want := "iframe.src = './$1%20docs/' + f.path.split('/').map(encodeURIComponent).join('/');"
	if got != want {
		t.Errorf("applyRewrites() = %q, want %q", got, want)
	}
}

func TestContentURLExpr(t *testing.T) {
	tests := []struct {
		contentDir string
		want       string
	}{
		{"docs", `'./docs/' + p.split('/').map(encodeURIComponent).join('/')`},
		{"it's", `'./it%27s/' + p.split('/').map(encodeURIComponent).join('/')`},
		{`a\b`, `'./a%5Cb/' + p.split('/').map(encodeURIComponent).join('/')`},
		{"ünï", `'./%C3%BCn%C3%AF/' + p.split('/').map(encodeURIComponent).join('/')`},
	}
	for _, tt := range tests {
		t.Run(tt.contentDir, func(t *testing.T) {
			if got := contentURLExpr(tt.contentDir, "p"); got != tt.want {
				t.Errorf("contentURLExpr(%q) = %q, want %q", tt.contentDir, got, tt.want)
			}
		})
	}
}
