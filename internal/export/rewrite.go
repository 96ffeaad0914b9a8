package export

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// Anchors in the viewer pages that point at live-server endpoints.
var (
	loadFuncPattern  = regexp.MustCompile(`async function load\(\) \{[\s\S]*?\n    \}`)
	fileFramePattern = regexp.MustCompile(`iframe\.src = '/file\?path=' \+ encodeURIComponent\(f\.path\);`)
	pdfFramePattern  = regexp.MustCompile(`iframe\.src = '/pdf-viewer\.html\?path=' \+ encodeURIComponent\(f\.path\);`)
	pdfURLPattern    = regexp.MustCompile(`const pdfUrl = '/file\?path='[\s\S]*?;`)
)

// staticLoad replaces the live load(): it reads the exported data.json instead
// of calling /config and /list.
const staticLoad = `async function load() {
      try {
        const res = await fetch('./` + DataFilename + `');
        if (!res.ok) {
          document.getElementById('tiles').textContent = 'Failed to load data.json';
          return;
        }
        const data = await res.json();
        const cfg = data.config || {};
        if (cfg.appTitle) document.title = cfg.appTitle;
        if (cfg.themeColor) document.documentElement.style.setProperty('--accent', cfg.themeColor);
        flatFiles = [];
        dfsCollect(data.fileTree || [], flatFiles);
        loadFromStorage();
        updateCounts();
        renderTiles(flatFiles);
        if (flatFiles.length) openInViewer(0);
      } catch (err) {
        document.getElementById('tiles').textContent = 'Error loading files: ' + err.message;
      }
    }`

// rewrite is one anchored replacement in a viewer page.
type rewrite struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// contentURLExpr returns a JavaScript expression for the relative URL of the
// exported copy of pathExpr. Each path segment is percent-encoded on its own
// so separators survive.
func contentURLExpr(contentDir, pathExpr string) string {
	// PathEscape also escapes quotes and backslashes, so the literal is safe in '...'
	return fmt.Sprintf(`'./%s/' + %s.split('/').map(encodeURIComponent).join('/')`, url.PathEscape(contentDir), pathExpr)
}

// indexRewrites returns the replacements that turn the live index page into the static one.
func indexRewrites(contentDir string, now time.Time) []rewrite {
	version := strconv.FormatInt(now.UnixMilli(), 10)
	return []rewrite{
		{
			name:        "load()",
			pattern:     loadFuncPattern,
			replacement: staticLoad,
		},
		{
			name:        "document frame",
			pattern:     fileFramePattern,
			replacement: "iframe.src = " + contentURLExpr(contentDir, "f.path") + ";",
		},
		{
			name:        "pdf frame",
			pattern:     pdfFramePattern,
			replacement: "iframe.src = './pdf-viewer.html?v=" + version + "&path=' + encodeURIComponent(f.path);",
		},
	}
}

// pdfViewerRewrites returns the replacements for the PDF viewer page.
func pdfViewerRewrites(contentDir string) []rewrite {
	return []rewrite{
		{
			name:        "pdfUrl",
			pattern:     pdfURLPattern,
			replacement: "const pdfUrl = " + contentURLExpr(contentDir, "relPath") + ";",
		},
	}
}

// applyRewrites replaces the first match of every rewrite in page.
// Anchors that do not match are returned by name and leave the page unchanged.
func applyRewrites(page string, rewrites []rewrite) (string, []string) {
	var missing []string
	for _, rw := range rewrites {
		loc := rw.pattern.FindStringIndex(page)
		if loc == nil {
			missing = append(missing, rw.name)
			continue
		}
		page = page[:loc[0]] + rw.replacement + page[loc[1]:]
	}
	return page, missing
}
