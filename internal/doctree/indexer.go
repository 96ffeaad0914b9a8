package doctree

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sha1n/docshelf/internal/domain"
)

// Indexer builds document trees for a content root.
type Indexer struct {
	root   string
	lookup MediaTypeLookup
}

// NewIndexer creates a new indexer for the given absolute content root.
// A nil lookup falls back to LookupMediaType.
func NewIndexer(root string, lookup MediaTypeLookup) *Indexer {
	if lookup == nil {
		lookup = LookupMediaType
	}
	return &Indexer{
		root:   filepath.Clean(root),
		lookup: lookup,
	}
}

// Root returns the content root.
func (i *Indexer) Root() string {
	return i.root
}

// Index walks the content root and returns the synthetic root node whose
// children are the published tree. Directories without documents are pruned.
// Any directory that cannot be listed fails the whole call with a *DirectoryReadError.
func (i *Indexer) Index() (*domain.TreeNode, error) {
	children, err := i.walk(i.root, "")
	if err != nil {
		return nil, err
	}

	return &domain.TreeNode{
		Name:     filepath.Base(i.root),
		Path:     "",
		Kind:     domain.NodeKindDirectory,
		Children: children,
	}, nil
}

// walk returns the filtered, ordered children of dir. The result is never nil.
func (i *Indexer) walk(dir, relPath string) ([]*domain.TreeNode, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirectoryReadError{Path: dir, Err: err}
	}
	sortEntries(entries)

	children := make([]*domain.TreeNode, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		childRel := name
		if relPath != "" {
			childRel = filepath.Join(relPath, name)
		}

		switch {
		case e.IsDir():
			sub, err := i.walk(filepath.Join(dir, name), childRel)
			if err != nil {
				return nil, err
			}
			if len(sub) == 0 {
				slog.Debug("Pruning directory without documents", "path", childRel)
				continue
			}
			children = append(children, &domain.TreeNode{
				Name:     name,
				Path:     childRel,
				Kind:     domain.NodeKindDirectory,
				Children: sub,
			})

		case e.Type().IsRegular():
			mediaType := i.lookup(name)
			if !IsDocumentType(mediaType) {
				continue
			}
			children = append(children, &domain.TreeNode{
				Name:      name,
				Path:      childRel,
				Kind:      domain.NodeKindDocument,
				MediaType: mediaType,
			})

		default:
			// Symlinks, devices, sockets and pipes
			slog.Debug("Skipping non-regular entry", "path", childRel, "mode", e.Type().String())
		}
	}

	SortNodes(children)
	return children, nil
}
