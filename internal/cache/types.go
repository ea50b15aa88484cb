package cache

import (
	"context"

	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/target"
)

// ProjectsState is the cached result of glob-based project discovery.
type ProjectsState struct {
	Globs    []string                 `json:"globs"`
	Projects config.ProjectsSourceMap `json:"projects"`
}

// RunTargetState records the last run of a target.
type RunTargetState struct {
	Target      string `json:"target"`
	Hash        string `json:"hash"`
	ExitCode    int    `json:"exitCode"`
	LastRunTime int64  `json:"lastRunTime"`
	Stdout      string `json:"stdout,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
}

// Engine is the contract consumed by the project graph and the executors.
type Engine interface {
	Mode() Mode

	// LoadProjectsState returns the state cached for globs. A miss yields an
	// empty state, not an error.
	LoadProjectsState(ctx context.Context, globs []string) (*ProjectsState, error)
	SaveProjectsState(ctx context.Context, state *ProjectsState) error

	// LoadRunTargetState returns the last recorded run. A miss yields a state
	// carrying only the target.
	LoadRunTargetState(ctx context.Context, t target.Target) (*RunTargetState, error)
	SaveRunTargetState(ctx context.Context, state *RunTargetState) error

	// HashExists reports whether a fingerprint has a recorded result.
	HashExists(ctx context.Context, hash string) (bool, error)
	// SaveHash records a fingerprint along with the manifest it was built from.
	SaveHash(ctx context.Context, hash string, manifest any) error

	// TargetDir is a per-target scratch directory, e.g. for profiles.
	TargetDir(t target.Target) string
}
