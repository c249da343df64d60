package thumbs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArchive(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "originals")

	testFile := filepath.Join(tmpDir, "storm.jpg")
	if err := os.WriteFile(testFile, []byte("original"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	mover := NewMover(tmpDir, archive)

	moved, err := mover.Archive("storm.jpg")
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if !moved {
		t.Error("Expected file to be moved")
	}

	expectedPath := filepath.Join(archive, "storm.jpg")
	if mover.ArchivedPath("storm.jpg") != expectedPath {
		t.Errorf("Expected %s, got %s", expectedPath, mover.ArchivedPath("storm.jpg"))
	}

	// Verify file exists at new location
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Error("File does not exist at target location")
	}

	// Verify file no longer exists at old location
	if _, err := os.Stat(testFile); !os.IsNotExist(err) {
		t.Error("File still exists at old location")
	}

	// Archiving again is a no-op
	moved, err = mover.Archive("storm.jpg")
	if err != nil {
		t.Errorf("Second archive failed: %v", err)
	}
	if moved {
		t.Error("Expected no move the second time")
	}
}

func TestArchiveNeverOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "originals")
	if err := os.MkdirAll(archive, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	if err := os.WriteFile(filepath.Join(archive, "storm.jpg"), []byte("first"), 0644); err != nil {
		t.Fatalf("Failed to create archived file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "storm.jpg"), []byte("second"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	mover := NewMover(tmpDir, archive)
	if _, err := mover.Archive("storm.jpg"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(archive, "storm.jpg"))
	if string(data) != "first" {
		t.Errorf("Expected archived file to be kept, got %s", data)
	}
}

func TestArchiveMissing(t *testing.T) {
	tmpDir := t.TempDir()
	mover := NewMover(tmpDir, filepath.Join(tmpDir, "originals"))

	if _, err := mover.Archive("ghost.jpg"); err == nil {
		t.Error("Expected error for missing original")
	}
}
