// Package library ties the document tree, path resolution and search together
// behind one read-only service shared by the HTTP server, MCP tools and the exporter.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sha1n/docshelf/internal/config"
	"github.com/sha1n/docshelf/internal/doctree"
	"github.com/sha1n/docshelf/internal/domain"
	"github.com/sha1n/docshelf/internal/metrics"
	"github.com/sha1n/docshelf/internal/search"
)

// Rejection reasons recorded in metrics.
const (
	ReasonEscape    = "escape"
	ReasonMalformed = "malformed"
	ReasonNotFound  = "not_found"
)

// ErrSearchDisabled indicates search was turned off in settings
var ErrSearchDisabled = errors.New("search is disabled")

// Document describes a resolved document file.
type Document struct {
	// Path is the requested path relative to the content root, decoded.
	Path string

	// FullPath is the absolute path on disk.
	FullPath string

	Name      string
	MediaType string
	Size      int64
	ModTime   time.Time
}

// IsPDF reports whether the document is a PDF.
func (d *Document) IsPDF() bool {
	return doctree.IsPDF(d.MediaType)
}

// Service provides read-only access to a content folder.
type Service struct {
	settings *config.Settings
	root     string
	lookup   doctree.MediaTypeLookup
	indexer  *doctree.Indexer
	resolver *doctree.Resolver
	searcher *search.Searcher
	metrics  *metrics.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics records index, rejection and search metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMediaTypeLookup replaces the default extension table.
func WithMediaTypeLookup(lookup doctree.MediaTypeLookup) Option {
	return func(s *Service) { s.lookup = lookup }
}

// NewService creates a library service for settings.ContentFolder.
// The content folder is resolved to an absolute path; it is not required to exist yet.
func NewService(settings *config.Settings, opts ...Option) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	root, err := filepath.Abs(settings.ContentFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content folder: %w", err)
	}

	s := &Service{
		settings: settings,
		root:     root,
		lookup:   doctree.LookupMediaType,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.indexer = doctree.NewIndexer(root, s.lookup)
	s.resolver = doctree.NewResolver(root)
	if settings.Search.Enabled {
		s.searcher = search.NewSearcher(root, s.indexer, search.Options{
			MaxResults:  settings.Search.MaxResults,
			MaxFileSize: settings.Search.MaxFileSize,
			Metrics:     s.metrics,
		})
	}

	return s, nil
}

// Root returns the absolute content root.
func (s *Service) Root() string {
	return s.root
}

// Settings returns the settings the service was created with.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

// SearchEnabled reports whether Search is available.
func (s *Service) SearchEnabled() bool {
	return s.searcher != nil
}

// Tree indexes the content folder. Every call walks the filesystem again.
func (s *Service) Tree() (*domain.TreeNode, error) {
	start := time.Now()
	tree, err := s.indexer.Index()
	documents := 0
	if err == nil {
		_, documents = tree.Counts()
	}
	s.metrics.ObserveIndex(time.Since(start), documents, err)
	return tree, err
}

// Open resolves requested to an existing document file.
func (s *Service) Open(requested string) (*Document, error) {
	fullPath, info, err := s.resolver.ResolveFile(requested)
	if err != nil {
		s.metrics.ObserveRejection(rejectionReason(err))
		return nil, err
	}

	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to relativize %s: %w", fullPath, err)
	}

	return &Document{
		Path:      rel,
		FullPath:  fullPath,
		Name:      info.Name(),
		MediaType: s.lookup(info.Name()),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// ReadDocument opens requested and reads at most maxBytes of it.
// A non-positive maxBytes reads the whole file.
func (s *Service) ReadDocument(requested string, maxBytes int64) (_ []byte, _ *Document, err error) {
	doc, err := s.Open(requested)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(doc.FullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", doc.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", doc.Path, err)
	}
	return data, doc, nil
}

// Search runs a full-text query against a fresh index of the content folder.
func (s *Service) Search(ctx context.Context, q search.Query) (*search.Results, error) {
	if s.searcher == nil {
		return nil, ErrSearchDisabled
	}
	return s.searcher.Search(ctx, q)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, doctree.ErrPathEscape):
		return ReasonEscape
	case errors.Is(err, doctree.ErrMalformedPath):
		return ReasonMalformed
	default:
		return ReasonNotFound
	}
}
