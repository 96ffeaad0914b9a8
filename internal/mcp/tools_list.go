package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docshelf/internal/domain"
	"github.com/sha1n/docshelf/internal/library"
)

// ListArgument defines list parameters.
type ListArgument struct {
	Path string `json:"path,omitempty" jsonschema_description:"Optional folder path relative to the content root (e.g., guides/intro)"`
}

// ListHandler handles the list_documents MCP tool.
type ListHandler struct {
	library *library.Service
}

// NewListHandler creates a new list handler.
func NewListHandler(lib *library.Service) *ListHandler {
	return &ListHandler{library: lib}
}

// Handle indexes the content folder and renders the tree or a subtree.
func (h *ListHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListArgument) (*mcp.CallToolResult, any, error) {
	tree, err := h.library.Tree()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list documents: %s", err)), nil, nil
	}

	node := tree
	label := filepath.Base(h.library.Root())
	if p := strings.Trim(strings.TrimSpace(args.Path), "/"); p != "" {
		node = tree.Find(filepath.Clean(p))
		if node == nil || !node.IsDirectory() {
			return errorResult(fmt.Sprintf("Folder not found: %s", args.Path)), nil, nil
		}
		label = node.Path
	}

	if len(node.Children) == 0 {
		return textResult(fmt.Sprintf("No documents found in %s", label)), nil, nil
	}

	dirs, docs := node.Counts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Folder**: %s (%d folders, %d documents)\n\n", label, dirs, docs))
	renderTree(&sb, node.Children, 0)

	return textResult(sb.String()), nil, nil
}

func renderTree(sb *strings.Builder, nodes []*domain.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsDirectory() {
			sb.WriteString(fmt.Sprintf("%s%s/\n", indent, n.Name))
			renderTree(sb, n.Children, depth+1)
			continue
		}
		sb.WriteString(fmt.Sprintf("%s%s  (%s, %s)\n", indent, n.Name, n.Path, n.MediaType))
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *ListHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_documents",
		Description: "List the HTML and PDF documents in the content folder as an ordered tree",
	}
}

// RegisterListTool registers the list tool with an MCP server.
func RegisterListTool(server *mcp.Server, lib *library.Service) {
	handler := NewListHandler(lib)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
