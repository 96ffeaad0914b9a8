package domain

// DocumentRecord represents a document in the search index.
// It is built from a TreeNode plus whatever text could be extracted.
type DocumentRecord struct {
	// ID is the document's relative path, unique within a tree.
	ID string `json:"id"`

	// Name is the document's base name.
	Name string `json:"name"`

	// Path is the path relative to the content root.
	// Example: "guides/ch1.html"
	Path string `json:"path"`

	// MediaType is the resolved media type.
	MediaType string `json:"media_type"`

	// Format is "html" or "pdf", independent of media type parameters.
	Format string `json:"format"`

	// Keywords are the words of the file name without its extension.
	// Example: "ch1-intro.html" -> "ch1 intro"
	Keywords string `json:"keywords"`

	// Title is the HTML <title>, when present.
	Title string `json:"title"`

	// Content is the visible text of an HTML document. Empty for PDFs.
	Content string `json:"content"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	DocFieldID        = "id"
	DocFieldName      = "name"
	DocFieldPath      = "path"
	DocFieldMediaType = "media_type"
	DocFieldFormat    = "format"
	DocFieldKeywords  = "keywords"
	DocFieldTitle     = "title"
	DocFieldContent   = "content"
)

// Document formats used for filtering.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)
