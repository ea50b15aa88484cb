package vcs

import (
	"context"
	"sort"
)

// TouchedOptions selects which changes count as touched.
type TouchedOptions struct {
	// Base is the revision to compare against. Defaults to the default branch.
	Base string `json:"base"`
	// Head is the revision being compared. Defaults to HEAD.
	Head string `json:"head"`
	// Local lists uncommitted changes in the working tree instead.
	Local bool `json:"local"`
}

// Provider reports touched files as workspace-relative, slash separated
// paths.
type Provider interface {
	TouchedFiles(ctx context.Context, opts TouchedOptions) ([]string, error)
}

// Static is a Provider returning a fixed list.
type Static []string

// TouchedFiles returns the list sorted.
func (s Static) TouchedFiles(_ context.Context, _ TouchedOptions) ([]string, error) {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out, nil
}
