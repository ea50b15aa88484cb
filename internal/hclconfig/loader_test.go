package hclconfig

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkspace_ExplicitProjects(t *testing.T) {
	// --- Arrange ---
	root := testutil.WriteWorkspace(t, map[string]string{
		".monogrid/workspace.hcl": `
projects = {
  app = "apps/app"
  lib = "packages/lib"
}

runner {
  concurrency     = 8
  implicit_inputs = ["package.json"]
  bail            = true
}

install {
  command = "npm install"
  inputs  = ["package-lock.json"]
}

vcs {
  default_branch = "develop"
}
`,
	})

	// --- Act ---
	ws, err := NewLoader().LoadWorkspace(context.Background(), root)

	// --- Assert ---
	require.NoError(t, err)
	want := &config.WorkspaceConfig{
		Projects: config.ProjectsSourceMap{"app": "apps/app", "lib": "packages/lib"},
		Runner:   config.RunnerConfig{Concurrency: 8, ImplicitInputs: []string{"package.json"}, Bail: true},
		Install:  &config.InstallConfig{Command: "npm install", Inputs: []string{"package-lock.json"}},
		VCS:      config.VCSConfig{DefaultBranch: "develop"},
	}
	if diff := cmp.Diff(want, ws); diff != "" {
		t.Errorf("workspace config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWorkspace_Globs(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
	}{
		{"project_globs attribute", `project_globs = ["packages/*", "apps/*"]`},
		{"projects as a list", `projects = ["packages/*", "apps/*"]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteWorkspace(t, map[string]string{".monogrid/workspace.hcl": tc.hcl})

			ws, err := NewLoader().LoadWorkspace(context.Background(), root)

			require.NoError(t, err)
			assert.True(t, ws.Projects.UsesGlobs())
			assert.Equal(t, []string{"apps/*", "packages/*"}, ws.Projects.Globs())
			assert.Equal(t, config.DefaultConcurrency, ws.Runner.EffectiveConcurrency())
			assert.Equal(t, "main", ws.VCS.EffectiveDefaultBranch())
			assert.Nil(t, ws.Install)
		})
	}
}

func TestLoadWorkspace_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing file",
			files:   map[string]string{},
			wantErr: "workspace configuration not found",
		},
		{
			name:    "both projects and globs",
			files:   map[string]string{".monogrid/workspace.hcl": `projects = { a = "a" }` + "\n" + `project_globs = ["*"]`},
			wantErr: "mutually exclusive",
		},
		{
			name:    "syntax error",
			files:   map[string]string{".monogrid/workspace.hcl": `projects = {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{".monogrid/workspace.hcl": `projects = { a = "a" }` + "\n" + `colour = "blue"`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "no projects",
			files:   map[string]string{".monogrid/workspace.hcl": `vcs { default_branch = "main" }`},
			wantErr: "declares no projects",
		},
		{
			name:    "reserved id",
			files:   map[string]string{".monogrid/workspace.hcl": `projects = { "(workspace)" = "x" }`},
			wantErr: "reserved",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteWorkspace(t, tc.files)

			_, err := NewLoader().LoadWorkspace(context.Background(), root)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadProject(t *testing.T) {
	root := testutil.WriteWorkspace(t, map[string]string{
		"packages/lib/project.hcl": `
language   = "typescript"
type       = "library"
depends_on = ["base"]

file_groups = {
  sources = ["src/**/*"]
}

task "build" {
  command = "tsc"
  args    = ["--outDir", "${workspace.root}/dist/${project.id}"]
  env     = { PROJECT_SOURCE = project.source }
  inputs  = ["@sources"]
  outputs = ["dist"]
  deps    = ["^:build"]

  options {
    run_in_ci = false
  }
}
`,
	})
	scope := config.ProjectScope{
		ID:            "lib",
		Source:        "packages/lib",
		Root:          filepath.Join(root, "packages", "lib"),
		WorkspaceRoot: root,
	}

	cfg, err := NewLoader().LoadProject(context.Background(), scope)

	require.NoError(t, err)
	runInCI := false
	want := &config.ProjectConfig{
		Language:   "typescript",
		Type:       "library",
		DependsOn:  []string{"base"},
		FileGroups: map[string][]string{"sources": {"src/**/*"}},
		Tasks: map[string]*config.TaskConfig{
			"build": {
				Command: "tsc",
				Args:    []string{"--outDir", root + "/dist/lib"},
				Env:     map[string]string{"PROJECT_SOURCE": "packages/lib"},
				Inputs:  []string{"@sources"},
				Outputs: []string{"dist"},
				Deps:    []string{"^:build"},
				Options: config.TaskOptionsConfig{RunInCI: &runInCI},
			},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("project config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProject_MissingFileIsEmpty(t *testing.T) {
	root := t.TempDir()

	cfg, err := NewLoader().LoadProject(context.Background(), config.ProjectScope{ID: "x", Root: filepath.Join(root, "x"), WorkspaceRoot: root})

	require.NoError(t, err)
	assert.Equal(t, &config.ProjectConfig{}, cfg)
}

func TestLoadProject_DuplicateTask(t *testing.T) {
	root := testutil.WriteWorkspace(t, map[string]string{
		"x/project.hcl": `
task "build" { command = "a" }
task "build" { command = "b" }
`,
	})

	_, err := NewLoader().LoadProject(context.Background(), config.ProjectScope{ID: "x", Root: filepath.Join(root, "x"), WorkspaceRoot: root})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `task "build" is declared more than once`)
}

func TestLoadGlobalProject(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		cfg, err := NewLoader().LoadGlobalProject(context.Background(), t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, cfg.Tasks)
	})

	t.Run("tasks and file groups", func(t *testing.T) {
		root := testutil.WriteWorkspace(t, map[string]string{
			".monogrid/project.hcl": `
file_groups = {
  configs = ["*.json"]
}

task "lint" {
  command = "eslint ."
}
`,
		})

		cfg, err := NewLoader().LoadGlobalProject(context.Background(), root)

		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"configs": {"*.json"}}, cfg.FileGroups)
		require.Contains(t, cfg.Tasks, "lint")
		assert.Equal(t, "eslint .", cfg.Tasks["lint"].Command)
	})
}
