package project

import (
	"path/filepath"
	"sort"
)

// TouchedFilePaths is a set of absolute paths changed between two revisions
// or in the working tree.
type TouchedFilePaths map[string]struct{}

// NewTouchedFilePaths builds a set from absolute or workspace-relative paths.
func NewTouchedFilePaths(workspaceRoot string, paths ...string) TouchedFilePaths {
	set := make(TouchedFilePaths, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(workspaceRoot, filepath.FromSlash(p))
		}
		set[filepath.Clean(p)] = struct{}{}
	}
	return set
}

// Has reports whether the absolute path is in the set.
func (t TouchedFilePaths) Has(path string) bool {
	_, ok := t[filepath.Clean(path)]
	return ok
}

// Sorted returns the paths in ascending order.
func (t TouchedFilePaths) Sorted() []string {
	out := make([]string, 0, len(t))
	for p := range t {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
