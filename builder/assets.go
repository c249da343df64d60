package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyTree copies all files below src into dst. skip is called with the
// slash-separated path relative to src; returning true leaves that file or
// directory out.
func copyTree(src, dst string, skip func(rel string) bool) (int, error) {
	copied := 0
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Calculate relative path
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if relPath != "." && skip != nil && skip(filepath.ToSlash(relPath)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			// Create directory
			return os.MkdirAll(dstPath, 0755)
		}

		if upToDate(dstPath, info) {
			return nil
		}

		// Copy file
		if err := copyFile(path, dstPath, info.Mode()); err != nil {
			return fmt.Errorf("failed to copy %s: %w", relPath, err)
		}
		copied++
		return nil
	})
	return copied, err
}

// upToDate reports whether dst already has the size and a modification
// time no older than src.
func upToDate(dst string, src os.FileInfo) bool {
	info, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return info.Size() == src.Size() && !info.ModTime().Before(src.ModTime())
}

// copyFile copies a single file
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
