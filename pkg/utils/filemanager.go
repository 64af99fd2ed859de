// =============================================================================
// fixtable - File Manager Utility
// =============================================================================
//
// This module provides the file operations behind the output writer:
//   - Atomic file replacement (temporary file + rename)
//   - Backup copies of files about to be replaced
//   - Directory management
//
// WRITE STRATEGY:
//   - Output is written to a uniquely named temporary file in the target
//     directory, synced, and renamed over the target
//   - A failed write removes the temporary file and leaves the target as it
//     was
//   - An existing target keeps its permission bits
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BackupSuffix is appended to the name of a backup copy.
const BackupSuffix = ".bak"

// DefaultFileMode is used for new output files.
const DefaultFileMode os.FileMode = 0o644

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// TempName returns a unique temporary file name next to path.
//
// EXAMPLE:
//
//	TempName("out/table.tex") -> "out/.table.tex.3f2c...-....tmp"
func TempName(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))
}

// WriteFileAtomic replaces path with data.
//
// PARAMETERS:
//   - path: The file to write. Its directory must exist.
//   - data: The new content.
//
// RETURNS:
//   - An error if any step fails. The original file is untouched then.
func WriteFileAtomic(path string, data []byte) (err error) {
	mode := DefaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	tmpPath := TempName(path)
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// =============================================================================
// BACKUPS AND DIRECTORIES
// =============================================================================

// BackupFile copies path to path+BackupSuffix, replacing an older backup.
//
// RETURNS:
//   - The path of the backup copy.
//   - An error if the copy fails.
func BackupFile(path string) (string, error) {
	backup := path + BackupSuffix
	if err := copyFile(path, backup); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return backup, nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
