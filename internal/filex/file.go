// Package filex contains the small filesystem helpers used for upload
// buffering: the temp directory, random file names and cleanup.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureSubdDir creates dirName (relative to the working directory unless it
// is absolute) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// TempName returns a random path inside dir that keeps the lower-cased
// extension of original.
func TempName(dir, original string) string {
	return filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(original)))
}

// RemoveIfExists deletes path. A missing file or an empty path is not an error.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
