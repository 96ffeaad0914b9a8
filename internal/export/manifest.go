package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ManifestVersion is the current export manifest schema version
	ManifestVersion = 1

	// ManifestFilename is written at the root of every export
	ManifestFilename = "export-manifest.json"

	// DataFilename holds the viewer config and tree for the static loader
	DataFilename = "data.json"
)

// Manifest records what an export produced.
type Manifest struct {
	Version     int       `json:"version"`
	Generator   string    `json:"generator"`
	GeneratedAt time.Time `json:"generated_at"`
	ContentDir  string    `json:"content_dir"`
	Directories int       `json:"directories"`
	Documents   int       `json:"documents"`
	Files       int       `json:"files"`
	Bytes       int64     `json:"bytes"`
	Assets      int       `json:"assets"`
}

// LoadManifest reads the manifest of a previous export.
// Returns nil without error when there is none.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save(path string) error {
	return writeJSONAtomic(path, m)
}

// writeJSONAtomic writes v as indented JSON via a temp file and rename.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(tempPath), err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(tempPath), err)
	}
	return nil
}
