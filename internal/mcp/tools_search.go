package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/search"
)

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query string `json:"query" jsonschema_description:"Search query matched against document text, titles and file names"`
	Type  string `json:"type,omitempty" jsonschema_description:"Filter by document type: html or pdf"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results"`
}

// SearchHandler handles the search_documents MCP tool.
type SearchHandler struct {
	library *library.Service
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(lib *library.Service) *SearchHandler {
	return &SearchHandler{library: lib}
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	results, err := h.library.Search(ctx, search.Query{
		Text:   args.Query,
		Format: args.Type,
		Limit:  args.Limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidFormat):
			return errorResult(fmt.Sprintf("Invalid type %q: %s", args.Type, err)), nil, nil
		case errors.Is(err, library.ErrSearchDisabled):
			return errorResult("Search is disabled on this server"), nil, nil
		default:
			return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
		}
	}

	return formatResults(results), nil, nil
}

// formatResults formats search results for MCP response.
func formatResults(results *search.Results) *mcp.CallToolResult {
	if results.Total == 0 {
		return textResult(fmt.Sprintf("No results found for query: %s", results.Query))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", results.Total, results.Query))

	for i, hit := range results.Hits {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, hit.Path))
		if hit.Title != "" {
			sb.WriteString(fmt.Sprintf("**Title**: %s\n", hit.Title))
		}
		sb.WriteString(fmt.Sprintf("**Type**: %s\n", hit.MediaType))
		sb.WriteString(fmt.Sprintf("**Score**: %.4f\n\n", hit.Score))

		if len(hit.Fragments) > 0 {
			sb.WriteString("```\n")
			for _, fragment := range hit.Fragments {
				sb.WriteString(fragment)
				sb.WriteString("\n")
			}
			sb.WriteString("```\n")
		}

		sb.WriteString("\n")
	}

	if results.Total > uint64(len(results.Hits)) {
		sb.WriteString(fmt.Sprintf("... and %d more results\n", results.Total-uint64(len(results.Hits))))
	}

	return textResult(sb.String())
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_documents",
		Description: "Search HTML and PDF documents in the content folder by text, title and file name",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, lib *library.Service) {
	handler := NewSearchHandler(lib)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
