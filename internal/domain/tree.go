package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NodeKind distinguishes directories from documents in a tree.
type NodeKind string

// Node kinds as they appear in the published listing.
const (
	NodeKindDirectory NodeKind = "directory"
	NodeKindDocument  NodeKind = "file"
)

// TreeNode represents either a directory or a document within an indexed tree.
type TreeNode struct {
	// Name is the entry's base name.
	Name string `json:"name"`

	// Path is the path from the content root to this entry.
	// Empty for the synthetic root.
	Path string `json:"path"`

	// Kind is NodeKindDirectory or NodeKindDocument.
	Kind NodeKind `json:"type"`

	// MediaType is set for documents only.
	// Example: "text/html", "application/pdf"
	MediaType string `json:"mime,omitempty"`

	// Children is set for directories only, in published order.
	Children []*TreeNode `json:"children,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (n *TreeNode) IsDirectory() bool {
	return n.Kind == NodeKindDirectory
}

// IsDocument reports whether the node is a document.
func (n *TreeNode) IsDocument() bool {
	return n.Kind == NodeKindDocument
}

// Walk visits the node and its descendants depth-first in published order.
// Returning false from fn stops descent into that node's children.
func (n *TreeNode) Walk(fn func(*TreeNode) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the descendant with the given relative path, or nil.
// An empty path returns the node itself.
func (n *TreeNode) Find(path string) *TreeNode {
	if path == "" || n.Path == path {
		return n
	}
	var found *TreeNode
	n.Walk(func(node *TreeNode) bool {
		if found != nil {
			return false
		}
		if node.Path == path {
			found = node
			return false
		}
		return true
	})
	return found
}

// Counts returns the number of directory and document nodes below n.
func (n *TreeNode) Counts() (directories, documents int) {
	for _, child := range n.Children {
		child.Walk(func(node *TreeNode) bool {
			if node.IsDirectory() {
				directories++
			} else {
				documents++
			}
			return true
		})
	}
	return directories, documents
}

// MarshalListing encodes the published listing of a tree: the root's children.
// An empty tree encodes as "[]".
func MarshalListing(root *TreeNode) ([]byte, error) {
	children := []*TreeNode{}
	if root != nil && root.Children != nil {
		children = root.Children
	}
	return json.Marshal(children)
}

// UnmarshalListing decodes a published listing and validates every node.
func UnmarshalListing(data []byte) ([]*TreeNode, error) {
	var nodes []*TreeNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}
	if nodes == nil {
		nodes = []*TreeNode{}
	}
	for _, node := range nodes {
		if err := validateNode(node); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// ErrInvalidListing indicates a listing that does not describe a valid tree.
var ErrInvalidListing = errors.New("invalid listing")

func validateNode(n *TreeNode) error {
	if n == nil {
		return fmt.Errorf("%w: null node", ErrInvalidListing)
	}
	switch n.Kind {
	case NodeKindDirectory:
		if n.MediaType != "" {
			return fmt.Errorf("%w: directory %q has a media type", ErrInvalidListing, n.Path)
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: directory %q has no children", ErrInvalidListing, n.Path)
		}
		for _, child := range n.Children {
			if err := validateNode(child); err != nil {
				return err
			}
		}
	case NodeKindDocument:
		if n.MediaType == "" {
			return fmt.Errorf("%w: document %q has no media type", ErrInvalidListing, n.Path)
		}
		if n.Children != nil {
			return fmt.Errorf("%w: document %q has children", ErrInvalidListing, n.Path)
		}
	default:
		return fmt.Errorf("%w: unknown node type %q", ErrInvalidListing, n.Kind)
	}
	return nil
}
