package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Error constants for better error handling
var (
	ErrFileNotFound      = errors.New("filesystem: file not found")
	ErrDirectoryNotFound = errors.New("filesystem: directory not found")
	ErrInvalidPath       = errors.New("filesystem: invalid path")
)

// Filesystem is the read side of a template store. Paths are relative to
// the store root and may not escape it.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) (bool, error)
	ListDirectory(path string) ([]string, error)
	GetAbsolutePath(path string) (string, error)
}

type localFileSystem struct {
	root string
}

func NewLocalFileSystem(root string) Filesystem {
	return &localFileSystem{root: root}
}

func (filesystem *localFileSystem) resolve(path string) (string, error) {
	if path == "" {
		return "", ErrInvalidPath
	}

	if filesystem.root == "" {
		return path, nil
	}

	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrInvalidPath, path, filesystem.root)
	}
	return filepath.Join(filesystem.root, path), nil
}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	resolved, err := filesystem.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	return content, nil
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	resolved, err := filesystem.resolve(path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return !info.IsDir(), nil
}

// ListDirectory returns the sorted names of the regular files in path.
func (filesystem *localFileSystem) ListDirectory(path string) ([]string, error) {
	resolved := filesystem.root
	if resolved == "" {
		resolved = "."
	}
	if path != "" && path != "." {
		var err error
		if resolved, err = filesystem.resolve(path); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, resolved)
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	return names, nil
}

func (filesystem *localFileSystem) GetAbsolutePath(path string) (string, error) {
	resolved, err := filesystem.resolve(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
