package hclconfig

import "github.com/hashicorp/hcl/v2"

// workspaceFile is the root of `.monogrid/workspace.hcl`.
type workspaceFile struct {
	// Projects is either a map of project IDs to sources or a list of globs.
	Projects     hcl.Expression `hcl:"projects,optional"`
	ProjectGlobs []string       `hcl:"project_globs,optional"`
	Runner       *runnerBlock   `hcl:"runner,block"`
	Install      *installBlock  `hcl:"install,block"`
	VCS          *vcsBlock      `hcl:"vcs,block"`
}

type runnerBlock struct {
	Concurrency    int      `hcl:"concurrency,optional"`
	ImplicitInputs []string `hcl:"implicit_inputs,optional"`
	Bail           bool     `hcl:"bail,optional"`
}

type installBlock struct {
	Command string   `hcl:"command"`
	Inputs  []string `hcl:"inputs,optional"`
}

type vcsBlock struct {
	DefaultBranch string `hcl:"default_branch,optional"`
}

// globalProjectFile is the root of `.monogrid/project.hcl`.
type globalProjectFile struct {
	FileGroups map[string][]string `hcl:"file_groups,optional"`
	Tasks      []*taskBlock        `hcl:"task,block"`
}

// projectFile is the root of a project's `project.hcl`.
type projectFile struct {
	Language   string              `hcl:"language,optional"`
	Type       string              `hcl:"type,optional"`
	DependsOn  []string            `hcl:"depends_on,optional"`
	FileGroups map[string][]string `hcl:"file_groups,optional"`
	Tasks      []*taskBlock        `hcl:"task,block"`
}

type taskBlock struct {
	ID      string            `hcl:"id,label"`
	Command string            `hcl:"command"`
	Args    []string          `hcl:"args,optional"`
	Env     map[string]string `hcl:"env,optional"`
	Inputs  []string          `hcl:"inputs,optional"`
	Outputs []string          `hcl:"outputs,optional"`
	Deps    []string          `hcl:"deps,optional"`
	Options *taskOptionsBlock `hcl:"options,block"`
}

type taskOptionsBlock struct {
	RunInCI              *bool `hcl:"run_in_ci,optional"`
	Cache                *bool `hcl:"cache,optional"`
	RunFromWorkspaceRoot *bool `hcl:"run_from_workspace_root,optional"`
}
