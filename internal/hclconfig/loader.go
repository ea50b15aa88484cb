package hclconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
)

const (
	// ConfigDirName is the workspace configuration directory. Its presence
	// marks the workspace root.
	ConfigDirName = ".monogrid"
	// WorkspaceFileName is the workspace file inside ConfigDirName.
	WorkspaceFileName = "workspace.hcl"
	// ProjectFileName is both the global project file inside ConfigDirName
	// and the per-project file.
	ProjectFileName = "project.hcl"
)

// ErrNoWorkspace is returned when the workspace file is missing.
var ErrNoWorkspace = errors.New("workspace configuration not found")

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// parseFile parses and decodes one file into root. A missing file reports
// found=false.
func parseFile(path string, evalCtx *hcl.EvalContext, root any) (found bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	// A fresh parser per file; loads run concurrently.
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return true, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	diags = gohcl.DecodeBody(file.Body, evalCtx, root)
	if diags.HasErrors() {
		return true, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return true, nil
}

// LoadWorkspace reads `.monogrid/workspace.hcl` under root.
func (l *Loader) LoadWorkspace(ctx context.Context, root string) (*config.WorkspaceConfig, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(root, ConfigDirName, WorkspaceFileName)
	logger.Debug("Loading workspace configuration.", "path", path)

	evalCtx := workspaceEvalContext(root)
	var f workspaceFile
	found, err := parseFile(path, evalCtx, &f)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoWorkspace, path)
	}

	hasProjects := isExprDefined(ctx, f.Projects, "projects")
	if hasProjects && len(f.ProjectGlobs) > 0 {
		return nil, fmt.Errorf("%s: `projects` and `project_globs` are mutually exclusive", path)
	}

	projects := config.ProjectsSourceMap{}
	switch {
	case hasProjects:
		projects, err = decodeProjects(f.Projects, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case len(f.ProjectGlobs) > 0:
		projects = config.ProjectsFromGlobs(f.ProjectGlobs)
	}

	ws := translateWorkspace(&f, projects)
	if err := config.ValidateWorkspace(ws); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Workspace configuration loaded.", "projects", len(ws.Projects), "globs", ws.Projects.UsesGlobs())
	return ws, nil
}

// LoadGlobalProject reads `.monogrid/project.hcl`, if present.
func (l *Loader) LoadGlobalProject(ctx context.Context, workspaceRoot string) (*config.GlobalProjectConfig, error) {
	path := filepath.Join(workspaceRoot, ConfigDirName, ProjectFileName)

	var f globalProjectFile
	found, err := parseFile(path, workspaceEvalContext(workspaceRoot), &f)
	if err != nil || !found {
		return &config.GlobalProjectConfig{}, err
	}

	tasks, err := translateTasks(f.Tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Global project configuration loaded.", "tasks", len(tasks))
	return &config.GlobalProjectConfig{FileGroups: f.FileGroups, Tasks: tasks}, nil
}

// LoadProject reads `<project root>/project.hcl`, if present.
func (l *Loader) LoadProject(ctx context.Context, scope config.ProjectScope) (*config.ProjectConfig, error) {
	path := filepath.Join(scope.Root, ProjectFileName)

	var f projectFile
	found, err := parseFile(path, projectEvalContext(scope), &f)
	if err != nil {
		return nil, err
	}
	if !found {
		ctxlog.FromContext(ctx).Debug("Project has no configuration file.", "project", scope.ID)
		return &config.ProjectConfig{}, nil
	}

	tasks, err := translateTasks(f.Tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config.ProjectConfig{
		Language:   f.Language,
		Type:       f.Type,
		DependsOn:  f.DependsOn,
		FileGroups: f.FileGroups,
		Tasks:      tasks,
	}, nil
}
