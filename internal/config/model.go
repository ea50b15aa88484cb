package config

import (
	"sort"
)

const (
	// RootNodeID is the reserved identity of the synthetic project graph root.
	RootNodeID = "(workspace)"
	// FlagProjectsUsingGlob marks a ProjectsSourceMap whose remaining values
	// are glob patterns rather than project sources.
	FlagProjectsUsingGlob = "(globs)"

	// DefaultConcurrency is used when the runner block omits concurrency.
	DefaultConcurrency = 4
)

// ProjectsSourceMap maps project IDs to their source directory relative to
// the workspace root.
type ProjectsSourceMap map[string]string

// ProjectsFromGlobs builds the flagged source map for glob discovery.
func ProjectsFromGlobs(globs []string) ProjectsSourceMap {
	m := ProjectsSourceMap{FlagProjectsUsingGlob: FlagProjectsUsingGlob}
	for _, g := range globs {
		m[g] = g
	}
	return m
}

// UsesGlobs reports whether the map must be expanded by globbing.
func (m ProjectsSourceMap) UsesGlobs() bool {
	_, ok := m[FlagProjectsUsingGlob]
	return ok
}

// Globs returns the sorted glob patterns of a flagged map.
func (m ProjectsSourceMap) Globs() []string {
	var globs []string
	for key, value := range m {
		if key == FlagProjectsUsingGlob {
			continue
		}
		globs = append(globs, value)
	}
	sort.Strings(globs)
	return globs
}

// Clone returns an independent copy of the map.
func (m ProjectsSourceMap) Clone() ProjectsSourceMap {
	out := make(ProjectsSourceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WorkspaceConfig is the representation of the workspace file.
type WorkspaceConfig struct {
	Projects ProjectsSourceMap
	Runner   RunnerConfig
	Install  *InstallConfig
	VCS      VCSConfig
}

// RunnerConfig controls the action runner.
type RunnerConfig struct {
	Concurrency int
	// ImplicitInputs are added to the inputs of every task.
	ImplicitInputs []string
	// Bail turns every failure into an abort of the whole run.
	Bail bool
}

// InstallConfig describes the workspace dependency install step.
type InstallConfig struct {
	Command string
	Inputs  []string
}

// VCSConfig describes the version control setup.
type VCSConfig struct {
	DefaultBranch string
}

// GlobalProjectConfig is inherited by every project.
type GlobalProjectConfig struct {
	FileGroups map[string][]string
	Tasks      map[string]*TaskConfig
}

// ProjectConfig is the representation of a single project file.
type ProjectConfig struct {
	Language   string
	Type       string
	DependsOn  []string
	FileGroups map[string][]string
	Tasks      map[string]*TaskConfig
}

// TaskConfig is the representation of a `task` block.
type TaskConfig struct {
	Command string
	Args    []string
	Env     map[string]string
	Inputs  []string
	Outputs []string
	Deps    []string
	Options TaskOptionsConfig
}

// TaskOptionsConfig holds optional task switches. Nil means "use default".
type TaskOptionsConfig struct {
	RunInCI              *bool
	Cache                *bool
	RunFromWorkspaceRoot *bool
}

// EffectiveConcurrency returns the configured concurrency or the default.
func (r RunnerConfig) EffectiveConcurrency() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return DefaultConcurrency
}

// EffectiveDefaultBranch returns the configured default branch or "main".
func (v VCSConfig) EffectiveDefaultBranch() string {
	if v.DefaultBranch != "" {
		return v.DefaultBranch
	}
	return "main"
}
