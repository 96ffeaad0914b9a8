package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManifest_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", ManifestFilename)
	want := &Manifest{
		Version:     ManifestVersion,
		Generator:   "docshelf test",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ContentDir:  "docs",
		Directories: 1,
		Documents:   2,
		Files:       3,
		Bytes:       4,
		Assets:      5,
	}

	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	got, err := LoadManifest(filepath.Join(t.TempDir(), ManifestFilename))
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil manifest, got %+v", got)
	}
}

func TestLoadManifest_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFilename)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("Expected error for corrupt manifest")
	}
}
