// Package web holds the viewer page and its assets.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Asset names the exporter rewrites.
const (
	IndexPage     = "index.html"
	PDFViewerPage = "pdf-viewer.html"
)

//go:embed assets
var embedded embed.FS

//go:embed templates/view.html
var viewSource string

var viewTemplate = template.Must(template.New("view").Parse(viewSource))

// Embedded returns the built-in viewer assets.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets returns publicDir as a filesystem, or the built-in assets when publicDir is empty.
func Assets(publicDir string) fs.FS {
	if publicDir == "" {
		return Embedded()
	}
	return os.DirFS(publicDir)
}

// RenderView writes the single-document viewer page for a content path.
func RenderView(w io.Writer, path string) error {
	name := ""
	if path != "" {
		name = filepath.Base(filepath.FromSlash(path))
	}
	return viewTemplate.Execute(w, struct {
		Name string
		Path string
	}{
		Name: name,
		Path: path,
	})
}
