// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by FindUp when no ancestor contains the marker.
var ErrNotFound = errors.New("marker not found in any parent directory")

// FindUp walks from start towards the filesystem root and returns the first
// directory that contains marker (a file or directory name).
func FindUp(start string, marker string) (string, error) {
	if marker == "" {
		panic("marker must not be empty")
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// FindDirectories recursively searches rootPath for directories accepted by
// match, which receives the slash-separated path relative to rootPath.
// Hidden directories and node_modules are never descended into.
func FindDirectories(rootPath string, match func(rel string) bool) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == rootPath {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if match(rel) {
			dirs = append(dirs, rel)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return dirs, nil
}
