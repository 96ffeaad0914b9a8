// Package export writes a self-contained static copy of the viewer and the
// content folder that works from any static file host.
package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sha1n/docshelf/internal/domain"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/web"
)

// ErrOutputOverlapsContent indicates an output directory that would copy the
// content folder into itself or over itself.
var ErrOutputOverlapsContent = errors.New("output directory overlaps the content folder")

// ErrContentTargetExists indicates that the content copy target already exists
// and was not written by a previous export.
var ErrContentTargetExists = errors.New("content target exists and is not a previous export")

// dataFile is the document written to data.json.
type dataFile struct {
	Config   dataConfig         `json:"config"`
	FileTree []*domain.TreeNode `json:"fileTree"`
}

type dataConfig struct {
	AppTitle   string `json:"appTitle"`
	ThemeColor string `json:"themeColor"`
}

// Options customizes an Exporter.
type Options struct {
	// Assets defaults to the public dir from settings, or the embedded viewer.
	Assets fs.FS

	// Version is recorded in the manifest.
	Version string

	Now    func() time.Time
	Logger *slog.Logger
}

// Exporter builds static exports of a library.
type Exporter struct {
	library *library.Service
	assets  fs.FS
	version string
	now     func() time.Time
	logger  *slog.Logger
}

// NewExporter creates an exporter for lib using lib's export settings.
func NewExporter(lib *library.Service, opts Options) *Exporter {
	e := &Exporter{
		library: lib,
		assets:  opts.Assets,
		version: opts.Version,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if e.assets == nil {
		e.assets = web.Assets(lib.Settings().PublicDir)
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.version == "" {
		e.version = "dev"
	}
	return e
}

// Export writes the static site into the configured output directory.
// Concurrent exports into the same directory are serialized by a lock file
// next to it. The tree is indexed once; a failed index aborts before any write.
func (e *Exporter) Export(ctx context.Context) (*Summary, error) {
	start := e.now()
	settings := e.library.Settings()
	root := e.library.Root()

	outputDir, err := filepath.Abs(settings.Export.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	contentDir := filepath.Base(root)
	contentTarget := filepath.Join(outputDir, contentDir)
	if err := checkOverlap(root, outputDir, contentTarget); err != nil {
		return nil, err
	}

	lock := NewFileLock(outputDir + ".lock")
	if err := lock.Lock(ctx, settings.Export.LockTimeout); err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("Failed to release export lock", "path", lock.Path(), "error", err)
		}
	}()

	manifestPath := filepath.Join(outputDir, ManifestFilename)
	previous, err := LoadManifest(manifestPath)
	if err != nil {
		e.logger.Warn("Ignoring unreadable export manifest", "path", manifestPath, "error", err)
		previous = nil
	}
	ownsTarget := previous != nil && previous.ContentDir == contentDir
	if ownsTarget {
		e.logger.Info("Replacing previous export", "generated_at", previous.GeneratedAt, "documents", previous.Documents)
	} else if _, err := os.Lstat(contentTarget); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrContentTargetExists, contentTarget)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to inspect %s: %w", contentTarget, err)
	}

	tree, err := e.library.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to index content folder: %w", err)
	}
	directories, documents := tree.Counts()
	e.logger.Info("Indexed content folder", "root", root, "directories", directories, "documents", documents)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fileTree := tree.Children
	if fileTree == nil {
		fileTree = []*domain.TreeNode{}
	}
	data := dataFile{
		Config: dataConfig{
			AppTitle:   settings.Viewer.AppTitle,
			ThemeColor: settings.Viewer.ThemeColor,
		},
		FileTree: fileTree,
	}
	if err := writeJSONAtomic(filepath.Join(outputDir, DataFilename), data); err != nil {
		return nil, err
	}

	if ownsTarget {
		if err := os.RemoveAll(contentTarget); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", contentTarget, err)
		}
	}
	files, bytes, err := copyTree(ctx, root, contentTarget, settings.Export.Concurrency)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Copied content folder", "target", contentTarget, "files", files, "bytes", bytes)

	assets, err := copyAssets(e.assets, outputDir)
	if err != nil {
		return nil, err
	}

	var warnings []string
	warnings = append(warnings, e.rewritePage(filepath.Join(outputDir, web.IndexPage), indexRewrites(contentDir, start))...)
	warnings = append(warnings, e.rewritePage(filepath.Join(outputDir, web.PDFViewerPage), pdfViewerRewrites(contentDir))...)

	manifest := &Manifest{
		Version:     ManifestVersion,
		Generator:   "docshelf " + e.version,
		GeneratedAt: start.UTC(),
		ContentDir:  contentDir,
		Directories: directories,
		Documents:   documents,
		Files:       files,
		Bytes:       bytes,
		Assets:      assets,
	}
	if err := manifest.Save(manifestPath); err != nil {
		return nil, err
	}

	return &Summary{
		OutputDir:   outputDir,
		ContentDir:  contentDir,
		Directories: directories,
		Documents:   documents,
		Files:       files,
		Bytes:       bytes,
		Assets:      assets,
		Warnings:    warnings,
		Duration:    e.now().Sub(start),
	}, nil
}

// rewritePage applies rewrites to the page at path in place.
// A missing page or anchor is reported as a warning, never an error.
func (e *Exporter) rewritePage(path string, rewrites []rewrite) []string {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("%s not rewritten: %v", name, err)
		e.logger.Warn("Viewer page not rewritten", "page", name, "error", err)
		return []string{msg}
	}

	page, missing := applyRewrites(string(data), rewrites)
	var warnings []string
	for _, anchor := range missing {
		e.logger.Warn("Rewrite anchor not found; page left pointing at the live server", "page", name, "anchor", anchor)
		warnings = append(warnings, fmt.Sprintf("%s: %s anchor not found", name, anchor))
	}
	if len(missing) == len(rewrites) {
		return warnings
	}

	if err := writeFileAtomic(path, []byte(page)); err != nil {
		e.logger.Warn("Viewer page not rewritten", "page", name, "error", err)
		warnings = append(warnings, fmt.Sprintf("%s not rewritten: %v", name, err))
	}
	return warnings
}

// checkOverlap rejects output locations whose content copy would land on or
// inside the content root.
func checkOverlap(root, outputDir, contentTarget string) error {
	if within(root, outputDir) || contentTarget == root {
		return fmt.Errorf("%w: %s", ErrOutputOverlapsContent, outputDir)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
