package depgraph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/projectgraph"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(command string, deps ...string) *config.TaskConfig {
	return &config.TaskConfig{Command: command, Deps: deps}
}

// newWorkspace builds: app -> lib -> base, cli -> lib.
func newWorkspace(t *testing.T) *projectgraph.Graph {
	t.Helper()
	ws := &config.WorkspaceConfig{Projects: config.ProjectsSourceMap{
		"app":  "apps/app",
		"cli":  "apps/cli",
		"lib":  "packages/lib",
		"base": "packages/base",
	}}
	loader := &config.StaticLoader{
		Workspace: ws,
		Projects: map[string]*config.ProjectConfig{
			"app": {DependsOn: []string{"lib"}, Tasks: map[string]*config.TaskConfig{
				"build": task("vite build", "^:build"),
				"test":  task("vitest", "~:build"),
			}},
			"cli": {DependsOn: []string{"lib"}, Tasks: map[string]*config.TaskConfig{
				"build": task("tsc", "^:build"),
			}},
			"lib": {DependsOn: []string{"base"}, Tasks: map[string]*config.TaskConfig{
				"build": task("tsc", "^:build"),
				"lint":  task("eslint"),
			}},
			"base": {Tasks: map[string]*config.TaskConfig{
				"build": task("tsc"),
			}},
		},
	}
	pg, err := projectgraph.Create(context.Background(), t.TempDir(), ws, loader, cache.NewMemoryEngine())
	require.NoError(t, err)
	return pg
}

func runIndex(t *testing.T, g *DepGraph, raw string) NodeIndex {
	t.Helper()
	idx, ok := g.IndexOf(action.RunTargetNode(target.MustParse(raw)))
	require.True(t, ok, "missing run node for %s", raw)
	return idx
}

func labelsOf(g *DepGraph, idxs []NodeIndex) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = g.Node(idx).Label()
	}
	return out
}

func TestDepGraph_RunTargetExpandsDependencies(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	idxs, err := g.RunTarget(ctx, target.MustParse("app:build"), pg, nil)
	require.NoError(t, err)
	require.Len(t, idxs, 1)

	want := []string{
		"SetupToolchain",
		"RunTarget(app:build)",
		"InstallDeps",
		"SyncProject(app)",
		"SyncProject(lib)",
		"SyncProject(base)",
		"RunTarget(lib:build)",
		"RunTarget(base:build)",
	}
	if diff := cmp.Diff(want, g.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	app := runIndex(t, g, "app:build")
	assert.Equal(t,
		[]string{"InstallDeps", "SyncProject(app)", "RunTarget(lib:build)"},
		labelsOf(g, g.DependenciesOf(app)))

	syncApp, _ := g.IndexOf(action.SyncProjectNode("app"))
	assert.Equal(t, []string{"SetupToolchain", "SyncProject(lib)"}, labelsOf(g, g.DependenciesOf(syncApp)))

	require.NoError(t, g.DetectCycles())
}

func TestDepGraph_RunTargetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	first, err := g.RunTarget(ctx, target.MustParse("lib:build"), pg, nil)
	require.NoError(t, err)
	count := g.NodeCount()

	second, err := g.RunTarget(ctx, target.MustParse("lib:build"), pg, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, count, g.NodeCount())
}

func TestDepGraph_OwnScopeDependency(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	_, err := g.RunTarget(ctx, target.MustParse("app:test"), pg, nil)
	require.NoError(t, err)

	test := runIndex(t, g, "app:test")
	assert.Contains(t, labelsOf(g, g.DependenciesOf(test)), "RunTarget(app:build)")
}

func TestDepGraph_RunTargetSkipsUnaffected(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	touched := project.NewTouchedFilePaths(pg.WorkspaceRoot(), "apps/cli/src/main.ts")

	idxs, err := g.RunTarget(ctx, target.MustParse("app:build"), pg, touched)
	require.NoError(t, err)
	assert.Empty(t, idxs)
	assert.Equal(t, 1, g.NodeCount(), "only the setup root remains")

	idxs, err = g.RunTarget(ctx, target.MustParse("cli:build"), pg, touched)
	require.NoError(t, err)
	assert.Len(t, idxs, 1)
	// Dependencies are always included, affected or not.
	runIndex(t, g, "lib:build")
	runIndex(t, g, "base:build")
}

func TestDepGraph_AllProjectsScope(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	idxs, err := g.RunTarget(ctx, target.MustParse(":build"), pg, nil)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"RunTarget(app:build)", "RunTarget(base:build)", "RunTarget(cli:build)", "RunTarget(lib:build)"},
		labelsOf(g, idxs))
}

func TestDepGraph_RunTargetDependents(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	require.NoError(t, pg.LoadAll(ctx))
	g := New()

	lib := target.MustParse("lib:build")
	_, err := g.RunTarget(ctx, lib, pg, nil)
	require.NoError(t, err)
	_, ok := g.IndexOf(action.RunTargetNode(target.MustParse("app:build")))
	assert.False(t, ok, "dependents are not added by RunTarget")

	require.NoError(t, g.RunTargetDependents(ctx, lib, pg))
	runIndex(t, g, "app:build")
	runIndex(t, g, "cli:build")

	require.NoError(t, g.RunTargetDependents(ctx, target.MustParse("lib:lint"), pg), "dependents without the task are ignored")
}

func TestDepGraph_Errors(t *testing.T) {
	ctx := context.Background()
	pg := newWorkspace(t)
	g := New()

	_, err := g.RunTarget(ctx, target.MustParse("lib:deploy"), pg, nil)
	require.ErrorIs(t, err, ErrUnknownTask)

	_, err = g.RunTarget(ctx, target.MustParse("ghost:build"), pg, nil)
	require.ErrorIs(t, err, projectgraph.ErrUnconfiguredID)

	_, err = g.RunTarget(ctx, target.MustParse("^:build"), pg, nil)
	require.Error(t, err)
}

func TestDepGraph_DetectCycles(t *testing.T) {
	g := New()
	a, _ := g.getOrInsert(action.SyncProjectNode("a"))
	b, _ := g.getOrInsert(action.SyncProjectNode("b"))
	require.NoError(t, g.addEdge(a, b))
	require.NoError(t, g.DetectCycles())

	require.NoError(t, g.addEdge(b, a))
	require.ErrorIs(t, g.DetectCycles(), ErrCycle)

	require.Error(t, g.addEdge(a, a), "self edges are rejected")
}

func TestDepGraph_ToDot(t *testing.T) {
	g := New()
	_, err := g.InstallDeps()
	require.NoError(t, err)

	want := `digraph {
    0 [ label="SetupToolchain" style=filled, shape=oval, fillcolor=black, fontcolor=white]
    1 [ label="InstallDeps" style=filled, shape=oval, fillcolor=gray, fontcolor=black]
    1 -> 0 [ arrowhead=box, arrowtail=box]
}
`
	assert.Equal(t, want, g.ToDot())
}
