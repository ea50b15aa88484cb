package project

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"sort"

	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/target"
)

// Project is a unit of source code with its own configuration and tasks.
type Project struct {
	ID         string              `json:"id"`
	Root       string              `json:"root"`
	Source     string              `json:"source"`
	DependsOn  []string            `json:"dependsOn"`
	FileGroups map[string][]string `json:"fileGroups,omitempty"`
	Language   Language            `json:"language"`
	Type       Type                `json:"type"`
	Tasks      map[string]*Task    `json:"tasks"`
}

// New builds a project from its scope and configuration. Global tasks are
// inherited and overridden by project tasks with the same ID.
func New(scope config.ProjectScope, global *config.GlobalProjectConfig, cfg *config.ProjectConfig, implicitInputs []string) (*Project, error) {
	if err := target.ValidateProjectID(scope.ID); err != nil {
		return nil, err
	}
	if global == nil {
		global = &config.GlobalProjectConfig{}
	}
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}

	source := path.Clean(filepath.ToSlash(scope.Source))
	p := &Project{
		ID:         scope.ID,
		Root:       scope.Root,
		Source:     source,
		DependsOn:  append([]string(nil), cfg.DependsOn...),
		FileGroups: mergeFileGroups(global.FileGroups, cfg.FileGroups),
		Language:   ParseLanguage(cfg.Language),
		Type:       ParseType(cfg.Type),
		Tasks:      make(map[string]*Task),
	}
	if p.Root == "" {
		p.Root = filepath.Join(scope.WorkspaceRoot, filepath.FromSlash(source))
	}

	seen := make(map[string]struct{}, len(p.DependsOn))
	for _, dep := range p.DependsOn {
		if dep == p.ID {
			return nil, fmt.Errorf("%w: project %q depends on itself", config.ErrDependencyCycle, p.ID)
		}
		if _, dup := seen[dep]; dup {
			return nil, fmt.Errorf("project %q declares dependency %q twice", p.ID, dep)
		}
		seen[dep] = struct{}{}
	}

	taskConfigs := make(map[string]*config.TaskConfig, len(global.Tasks)+len(cfg.Tasks))
	for id, tc := range global.Tasks {
		taskConfigs[id] = tc
	}
	for id, tc := range cfg.Tasks {
		taskConfigs[id] = tc
	}
	for id, tc := range taskConfigs {
		task, err := newTask(p.ID, source, id, tc, p.FileGroups, implicitInputs)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", p.ID, err)
		}
		p.Tasks[id] = task
	}

	return p, nil
}

func mergeFileGroups(global, local map[string][]string) map[string][]string {
	if len(global) == 0 && len(local) == 0 {
		return nil
	}
	out := make(map[string][]string, len(global)+len(local))
	for k, v := range global {
		out[k] = slices.Clone(v)
	}
	for k, v := range local {
		out[k] = slices.Clone(v)
	}
	return out
}

// GetDependencies returns the declared dependency IDs in ascending order.
func (p *Project) GetDependencies() []string {
	deps := slices.Clone(p.DependsOn)
	sort.Strings(deps)
	return deps
}

// GetTask returns a task by ID.
func (p *Project) GetTask(id string) (*Task, error) {
	task, ok := p.Tasks[id]
	if !ok {
		return nil, fmt.Errorf("unknown task %q for project %q", id, p.ID)
	}
	return task, nil
}

// TaskIDs returns the task IDs in ascending order.
func (p *Project) TaskIDs() []string {
	ids := make([]string, 0, len(p.Tasks))
	for id := range p.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.DependsOn = slices.Clone(p.DependsOn)
	c.FileGroups = mergeFileGroups(p.FileGroups, nil)
	c.Tasks = make(map[string]*Task, len(p.Tasks))
	for id, t := range p.Tasks {
		c.Tasks[id] = t.Clone()
	}
	return &c
}
