// Package security validates user-supplied locations of local data files.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths carrying shell metacharacters.
var ErrUnsafePath = errors.New("path contains a forbidden character")

// forbidden are characters no data file path of ours contains. They are
// rejected so a path read from the environment can never be pasted into a
// shell or DSN and change its meaning.
const forbidden = ";&|$`(){}<>!\n\r"

// ValidateFilePath cleans path, makes it absolute and resolves symlinks
// when the file exists. A file that does not exist yet keeps its cleaned
// absolute path.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}
	if i := strings.IndexAny(path, forbidden); i >= 0 {
		return "", fmt.Errorf("%w %q: %s", ErrUnsafePath, path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, os.ErrNotExist):
		return abs, nil
	default:
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
}
