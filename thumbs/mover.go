package thumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mover archives original artwork files out of the source directory.
type Mover struct {
	sourceDir  string
	archiveDir string
}

// NewMover creates a mover from sourceDir into archiveDir.
func NewMover(sourceDir, archiveDir string) *Mover {
	return &Mover{sourceDir: sourceDir, archiveDir: archiveDir}
}

// ArchivedPath returns where the original of name is kept.
func (m *Mover) ArchivedPath(name string) string {
	return filepath.Join(m.archiveDir, name)
}

// Archive moves name from the source directory into the archive. An
// original that is already archived is never overwritten; the source file
// is then left where it is. It reports whether a move happened.
func (m *Mover) Archive(name string) (bool, error) {
	src := filepath.Join(m.sourceDir, name)
	dst := m.ArchivedPath(name)

	// Check if source and target are the same
	if src == dst {
		return false, nil
	}

	if _, err := os.Stat(dst); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check archive: %w", err)
	}

	if _, err := os.Stat(src); os.IsNotExist(err) {
		return false, fmt.Errorf("original %s not found", name)
	}

	// Ensure archive folder exists
	if err := os.MkdirAll(m.archiveDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create archive folder: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		return false, fmt.Errorf("failed to move file: %w", err)
	}

	return true, nil
}
