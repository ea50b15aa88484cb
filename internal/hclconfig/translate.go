package hclconfig

import (
	"fmt"

	"github.com/specialistvlad/monogrid/internal/config"
)

func translateTasks(blocks []*taskBlock) (map[string]*config.TaskConfig, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	tasks := make(map[string]*config.TaskConfig, len(blocks))
	for _, b := range blocks {
		if _, dup := tasks[b.ID]; dup {
			return nil, fmt.Errorf("task %q is declared more than once", b.ID)
		}
		tasks[b.ID] = translateTask(b)
	}
	return tasks, nil
}

func translateTask(b *taskBlock) *config.TaskConfig {
	cfg := &config.TaskConfig{
		Command: b.Command,
		Args:    b.Args,
		Env:     b.Env,
		Inputs:  b.Inputs,
		Outputs: b.Outputs,
		Deps:    b.Deps,
	}
	if b.Options != nil {
		cfg.Options = config.TaskOptionsConfig{
			RunInCI:              b.Options.RunInCI,
			Cache:                b.Options.Cache,
			RunFromWorkspaceRoot: b.Options.RunFromWorkspaceRoot,
		}
	}
	return cfg
}

func translateWorkspace(f *workspaceFile, projects config.ProjectsSourceMap) *config.WorkspaceConfig {
	ws := &config.WorkspaceConfig{Projects: projects}
	if f.Runner != nil {
		ws.Runner = config.RunnerConfig{
			Concurrency:    f.Runner.Concurrency,
			ImplicitInputs: f.Runner.ImplicitInputs,
			Bail:           f.Runner.Bail,
		}
	}
	if f.Install != nil {
		ws.Install = &config.InstallConfig{Command: f.Install.Command, Inputs: f.Install.Inputs}
	}
	if f.VCS != nil {
		ws.VCS = config.VCSConfig{DefaultBranch: f.VCS.DefaultBranch}
	}
	return ws
}
