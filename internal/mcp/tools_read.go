package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docshelf/internal/doctree"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/search"
)

// ReadArgument defines read parameters.
type ReadArgument struct {
	Path string `json:"path" jsonschema_description:"Document path relative to the content root, as shown by list_documents"`
}

// ReadHandler handles the read_document MCP tool.
type ReadHandler struct {
	library *library.Service
}

// NewReadHandler creates a new read handler.
func NewReadHandler(lib *library.Service) *ReadHandler {
	return &ReadHandler{library: lib}
}

// Handle returns the visible text of an HTML document, or a description of a PDF.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Path) == "" {
		return errorResult("Path cannot be empty"), nil, nil
	}

	// Tool paths are raw names; the resolver expects the percent-encoded form
	requested := url.PathEscape(args.Path)

	doc, err := h.library.Open(requested)
	if err != nil {
		return errorResult(describeOpenError(args.Path, err)), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Document**: `%s`\n", doc.Path))
	sb.WriteString(fmt.Sprintf("**Type**: %s\n", doc.MediaType))
	sb.WriteString(fmt.Sprintf("**Size**: %d bytes\n", doc.Size))

	switch {
	case doc.IsPDF():
		sb.WriteString("\nPDF documents are not text-extracted. Open it in the viewer at ")
		sb.WriteString(fmt.Sprintf("`/view?path=%s`.", url.QueryEscape(doc.Path)))
		return textResult(sb.String()), nil, nil

	case !doctree.IsHTML(doc.MediaType):
		return errorResult(fmt.Sprintf("Not a document: %s (%s)", args.Path, doc.MediaType)), nil, nil
	}

	maxFileSize := h.library.Settings().Search.MaxFileSize
	data, _, err := h.library.ReadDocument(requested, maxFileSize)
	if err != nil {
		return errorResult(fmt.Sprintf("Error reading document: %s", err)), nil, nil
	}

	title, text, err := search.ExtractHTML(bytes.NewReader(data))
	if err != nil {
		return errorResult(fmt.Sprintf("Error parsing document: %s", err)), nil, nil
	}

	if title != "" {
		sb.WriteString(fmt.Sprintf("**Title**: %s\n", title))
	}
	if maxFileSize > 0 && doc.Size > maxFileSize {
		sb.WriteString(fmt.Sprintf("**Truncated**: first %.2f KB of %.2f KB\n", float64(maxFileSize)/1024, float64(doc.Size)/1024))
	}
	sb.WriteString("\n")
	sb.WriteString(text)

	return textResult(sb.String()), nil, nil
}

func describeOpenError(path string, err error) string {
	switch {
	case doctree.IsRejected(err):
		return fmt.Sprintf("Invalid path: %s", path)
	case errors.Is(err, doctree.ErrNotFound):
		return fmt.Sprintf("Document not found: %s", path)
	default:
		return fmt.Sprintf("Error accessing document: %s", err)
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *ReadHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_document",
		Description: "Read the text of an HTML document from the content folder; PDFs are described, not extracted",
	}
}

// RegisterReadTool registers the read tool with an MCP server.
func RegisterReadTool(server *mcp.Server, lib *library.Service) {
	handler := NewReadHandler(lib)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
