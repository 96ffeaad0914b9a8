package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/sha1n/docshelf/internal/doctree"
	"github.com/sha1n/docshelf/internal/domain"
)

// MaxBatchSize is the maximum number of documents per batch
const MaxBatchSize = 100

// CreateIndexMapping creates the Bleve index mapping for document records.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Content field - analyzed for full-text search
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = true
	contentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.DocFieldContent, contentField)

	// Title - analyzed, stored for display and highlighting
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	titleField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.DocFieldTitle, titleField)

	// Keywords - analyzed words of the file name
	keywordsField := bleve.NewTextFieldMapping()
	keywordsField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(domain.DocFieldKeywords, keywordsField)

	// Format - keyword, used for filtering
	formatField := bleve.NewTextFieldMapping()
	formatField.Analyzer = keyword.Name
	formatField.Store = true
	docMapping.AddFieldMappingsAt(domain.DocFieldFormat, formatField)

	// Name, path and media type - stored for retrieval only
	for _, field := range []string{domain.DocFieldName, domain.DocFieldPath, domain.DocFieldMediaType} {
		stored := bleve.NewTextFieldMapping()
		stored.Analyzer = keyword.Name
		stored.Store = true
		docMapping.AddFieldMappingsAt(field, stored)
	}

	// ID - stored but not indexed (we use the document ID)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.DocFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// NewRecord builds the search record for a document node.
// HTML files up to maxFileSize bytes contribute their title and text;
// larger HTML files and PDFs are searchable by name only.
func NewRecord(root string, node *domain.TreeNode, maxFileSize int64) domain.DocumentRecord {
	record := domain.DocumentRecord{
		ID:        node.Path,
		Name:      node.Name,
		Path:      node.Path,
		MediaType: node.MediaType,
		Format:    domain.FormatPDF,
		Keywords:  Keywords(node.Name),
	}
	if !doctree.IsHTML(node.MediaType) {
		return record
	}
	record.Format = domain.FormatHTML

	path := filepath.Join(root, node.Path)
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxFileSize {
		return record
	}

	f, err := os.Open(path)
	if err != nil {
		return record
	}
	defer func() { _ = f.Close() }()

	title, text, err := ExtractHTML(f)
	if err != nil {
		slog.Debug("Skipping unparsable document text", "path", node.Path, "error", err)
		return record
	}
	record.Title = title
	record.Content = text
	return record
}

// BuildIndex creates an in-memory index holding every document of tree.
// Returns the index and the number of documents indexed.
func BuildIndex(ctx context.Context, root string, tree *domain.TreeNode, maxFileSize int64) (bleve.Index, int, error) {
	index, err := bleve.NewMemOnly(CreateIndexMapping())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create index: %w", err)
	}

	count, err := indexDocuments(ctx, index, root, tree, maxFileSize)
	if err != nil {
		_ = index.Close()
		return nil, 0, err
	}

	return index, count, nil
}

func indexDocuments(ctx context.Context, index bleve.Index, root string, tree *domain.TreeNode, maxFileSize int64) (int, error) {
	var documents []*domain.TreeNode
	tree.Walk(func(node *domain.TreeNode) bool {
		if node.IsDocument() {
			documents = append(documents, node)
		}
		return true
	})

	count := 0
	batch := index.NewBatch()
	flush := func() error {
		size := batch.Size()
		if size == 0 {
			return nil
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("batch index failed: %w", err)
		}
		count += size
		batch = index.NewBatch()
		return nil
	}

	for _, node := range documents {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		record := NewRecord(root, node, maxFileSize)
		if err := batch.Index(record.ID, record); err != nil {
			continue // Skip on indexing error
		}

		if batch.Size() >= MaxBatchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}

	if err := flush(); err != nil {
		return 0, err
	}
	return count, nil
}
