package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTree() *TreeNode {
	return &TreeNode{
		Name: "q",
		Path: "",
		Kind: NodeKindDirectory,
		Children: []*TreeNode{
			{
				Name: "guides",
				Path: "guides",
				Kind: NodeKindDirectory,
				Children: []*TreeNode{
					{Name: "ch1.html", Path: "guides/ch1.html", Kind: NodeKindDocument, MediaType: "text/html"},
					{Name: "ch2.pdf", Path: "guides/ch2.pdf", Kind: NodeKindDocument, MediaType: "application/pdf"},
				},
			},
			{Name: "index.html", Path: "index.html", Kind: NodeKindDocument, MediaType: "text/html"},
		},
	}
}

func TestMarshalListing_RoundTrip(t *testing.T) {
	tree := sampleTree()

	data, err := MarshalListing(tree)
	if err != nil {
		t.Fatalf("MarshalListing failed: %v", err)
	}

	decoded, err := UnmarshalListing(data)
	if err != nil {
		t.Fatalf("UnmarshalListing failed: %v", err)
	}

	if diff := cmp.Diff(tree.Children, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalListing_EmptyTree(t *testing.T) {
	tests := []struct {
		name string
		root *TreeNode
	}{
		{"nil root", nil},
		{"nil children", &TreeNode{Kind: NodeKindDirectory}},
		{"empty children", &TreeNode{Kind: NodeKindDirectory, Children: []*TreeNode{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalListing(tt.root)
			if err != nil {
				t.Fatalf("MarshalListing failed: %v", err)
			}
			if string(data) != "[]" {
				t.Errorf("MarshalListing = %s, want []", data)
			}
		})
	}
}

func TestMarshalListing_WireFields(t *testing.T) {
	data, err := MarshalListing(sampleTree())
	if err != nil {
		t.Fatalf("MarshalListing failed: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal to maps: %v", err)
	}

	dir := raw[0]
	if dir["type"] != "directory" {
		t.Errorf("directory type = %v", dir["type"])
	}
	if _, ok := dir["mime"]; ok {
		t.Error("directory should not carry mime")
	}
	if _, ok := dir["children"]; !ok {
		t.Error("directory should carry children")
	}

	doc := raw[1]
	if doc["type"] != "file" {
		t.Errorf("document type = %v", doc["type"])
	}
	if doc["mime"] != "text/html" {
		t.Errorf("document mime = %v", doc["mime"])
	}
	if _, ok := doc["children"]; ok {
		t.Error("document should not carry children")
	}
}

func TestUnmarshalListing_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown type", `[{"name":"x","path":"x","type":"link"}]`},
		{"document without mime", `[{"name":"x.html","path":"x.html","type":"file"}]`},
		{"directory without children", `[{"name":"d","path":"d","type":"directory"}]`},
		{"directory with mime", `[{"name":"d","path":"d","type":"directory","mime":"text/html","children":[{"name":"a.html","path":"d/a.html","type":"file","mime":"text/html"}]}]`},
		{"document with children", `[{"name":"a.html","path":"a.html","type":"file","mime":"text/html","children":[]}]`},
		{"null node", `[null]`},
		{"nested invalid", `[{"name":"d","path":"d","type":"directory","children":[{"name":"x","path":"d/x","type":"?"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalListing([]byte(tt.data))
			if !errors.Is(err, ErrInvalidListing) {
				t.Errorf("expected ErrInvalidListing, got %v", err)
			}
		})
	}
}

func TestUnmarshalListing_Malformed(t *testing.T) {
	if _, err := UnmarshalListing([]byte("{")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestUnmarshalListing_Null(t *testing.T) {
	nodes, err := UnmarshalListing([]byte("null"))
	if err != nil {
		t.Fatalf("UnmarshalListing failed: %v", err)
	}
	if nodes == nil || len(nodes) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", nodes)
	}
}

func TestTreeNode_Find(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		path     string
		wantName string
	}{
		{"", "q"},
		{"guides", "guides"},
		{"guides/ch2.pdf", "ch2.pdf"},
		{"index.html", "index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			node := tree.Find(tt.path)
			if node == nil {
				t.Fatalf("Find(%q) returned nil", tt.path)
			}
			if node.Name != tt.wantName {
				t.Errorf("Find(%q).Name = %q, want %q", tt.path, node.Name, tt.wantName)
			}
		})
	}

	if tree.Find("missing.html") != nil {
		t.Error("Find should return nil for a missing path")
	}
}

func TestTreeNode_Counts(t *testing.T) {
	dirs, docs := sampleTree().Counts()
	if dirs != 1 {
		t.Errorf("directories = %d, want 1", dirs)
	}
	if docs != 3 {
		t.Errorf("documents = %d, want 3", docs)
	}
}

func TestTreeNode_Kinds(t *testing.T) {
	tree := sampleTree()
	if !tree.IsDirectory() || tree.IsDocument() {
		t.Error("root should be a directory")
	}
	doc := tree.Find("index.html")
	if !doc.IsDocument() || doc.IsDirectory() {
		t.Error("index.html should be a document")
	}
}
