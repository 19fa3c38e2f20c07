package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewFilesystemLoader returns a loader over the directory basePath.
// Reads are confined to basePath, symlinks included.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FSLoader, error) {
	root, err := resolveBaseDir(basePath)
	if err != nil {
		return nil, err
	}

	l := NewFSLoader(os.DirFS(root))
	l.check = func(name string) error {
		return containedIn(root, filepath.Join(root, filepath.FromSlash(name)))
	}
	return l, nil
}

// resolveBaseDir returns the absolute, symlink-free form of a readable
// directory.
func resolveBaseDir(basePath string) (string, error) {
	if basePath == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return "", fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return "", fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}
	return abs, nil
}

// containedIn reports ErrPathTraversal when target, after resolving
// symlinks, lies outside root. Targets that do not exist are checked as
// written and fail later on read.
func containedIn(root, target string) error {
	if real, err := filepath.EvalSymlinks(target); err == nil {
		target = real
	}
	if !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, target, root)
	}
	return nil
}
