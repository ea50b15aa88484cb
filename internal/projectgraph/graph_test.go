package projectgraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader wraps a StaticLoader and counts LoadProject calls per ID.
type countingLoader struct {
	config.StaticLoader
	mu    sync.Mutex
	calls map[string]int
}

func (l *countingLoader) LoadProject(ctx context.Context, scope config.ProjectScope) (*config.ProjectConfig, error) {
	l.mu.Lock()
	if l.calls == nil {
		l.calls = map[string]int{}
	}
	l.calls[scope.ID]++
	l.mu.Unlock()
	return l.StaticLoader.LoadProject(ctx, scope)
}

func newTestGraph(t *testing.T, projects config.ProjectsSourceMap, cfgs map[string]*config.ProjectConfig) (*Graph, *countingLoader) {
	t.Helper()
	ws := &config.WorkspaceConfig{Projects: projects}
	loader := &countingLoader{StaticLoader: config.StaticLoader{Workspace: ws, Projects: cfgs}}
	g, err := Create(context.Background(), t.TempDir(), ws, loader, cache.NewMemoryEngine())
	require.NoError(t, err)
	return g, loader
}

func TestGraph_IDsAreSortedDiscoveryKeys(t *testing.T) {
	g, _ := newTestGraph(t, config.ProjectsSourceMap{"c": "c", "a": "a", "b": "b"}, nil)

	assert.Equal(t, []string{"a", "b", "c"}, g.IDs())
	assert.Empty(t, g.LoadedIDs(), "ids do not depend on what is loaded")

	_, err := g.Load(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, g.IDs())
	assert.Equal(t, []string{"b"}, g.LoadedIDs())
}

func TestGraph_LoadWithDependency(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph(t,
		config.ProjectsSourceMap{"a": "packages/a", "b": "packages/b"},
		map[string]*config.ProjectConfig{"a": {DependsOn: []string{"b"}}},
	)

	a, err := g.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", a.ID)
	assert.Equal(t, "packages/a", a.Source)
	assert.Equal(t, filepath.Join(g.WorkspaceRoot(), "packages", "a"), a.Root)

	deps, err := g.DependenciesOf("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, deps)

	dependents, err := g.DependentsOf("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, dependents)

	dependents, err = g.DependentsOf("a")
	require.NoError(t, err)
	assert.Empty(t, dependents, "the synthetic root is never a dependent")

	want := `digraph {
    0 [ label="(workspace)" style=filled, shape=oval, fillcolor=black, fontcolor=white]
    1 [ label="a" style=filled, shape=oval, fillcolor=gray, fontcolor=black]
    2 [ label="b" style=filled, shape=oval, fillcolor=gray, fontcolor=black]
    0 -> 1 [ arrowhead=none]
    0 -> 2 [ arrowhead=none]
    1 -> 2 [ arrowhead=box, arrowtail=box]
}
`
	if diff := cmp.Diff(want, g.ToDot()); diff != "" {
		t.Errorf("dot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, g.ToDot(), g.ToDot(), "rendering is deterministic")
}

func TestGraph_LoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g, loader := newTestGraph(t,
		config.ProjectsSourceMap{"a": "a", "b": "b"},
		map[string]*config.ProjectConfig{"a": {DependsOn: []string{"b"}}},
	)

	first, err := g.Load(ctx, "a")
	require.NoError(t, err)
	second, err := g.Load(ctx, "a")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, g.LoadedIDs())
	assert.Equal(t, 1, loader.calls["a"])
	assert.Equal(t, 1, loader.calls["b"])

	second.DependsOn = append(second.DependsOn, "mutated")
	third, err := g.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, third.DependsOn, "callers receive clones")
}

func TestGraph_UnconfiguredID(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph(t,
		config.ProjectsSourceMap{"a": "a"},
		map[string]*config.ProjectConfig{"a": {DependsOn: []string{"ghost"}}},
	)

	_, err := g.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrUnconfiguredID)
	var unconfigured *UnconfiguredIDError
	require.ErrorAs(t, err, &unconfigured)
	assert.Equal(t, "missing", unconfigured.ID)

	_, err = g.Load(ctx, "a")
	require.ErrorIs(t, err, ErrUnconfiguredID, "a dependency on an unknown id fails the load")
	assert.Empty(t, g.LoadedIDs(), "a failed load leaves the graph untouched")

	_, err = g.DependenciesOf("a")
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestGraph_CycleIsRejected(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph(t,
		config.ProjectsSourceMap{"a": "a", "b": "b", "c": "c"},
		map[string]*config.ProjectConfig{
			"a": {DependsOn: []string{"b"}},
			"b": {DependsOn: []string{"c"}},
			"c": {DependsOn: []string{"a"}},
		},
	)

	_, err := g.Load(ctx, "a")
	require.ErrorIs(t, err, config.ErrDependencyCycle)

	err = g.LoadAll(ctx)
	require.ErrorIs(t, err, config.ErrDependencyCycle)
	assert.Empty(t, g.LoadedIDs())
}

func TestGraph_LoadAllExposesDependents(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph(t,
		config.ProjectsSourceMap{"app": "apps/app", "cli": "apps/cli", "lib": "packages/lib"},
		map[string]*config.ProjectConfig{
			"app": {DependsOn: []string{"lib"}},
			"cli": {DependsOn: []string{"lib"}},
		},
	)

	_, err := g.Load(ctx, "app")
	require.NoError(t, err)
	dependents, err := g.DependentsOf("lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, dependents, "only loaded nodes are visible")

	require.NoError(t, g.LoadAll(ctx))
	dependents, err = g.DependentsOf("lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "cli"}, dependents)
	assert.ElementsMatch(t, []string{"app", "cli", "lib"}, g.LoadedIDs())
}

func TestGraph_ConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	projects := config.ProjectsSourceMap{}
	cfgs := map[string]*config.ProjectConfig{}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("p%02d", i)
		projects[id] = id
		if i > 0 {
			cfgs[id] = &config.ProjectConfig{DependsOn: []string{fmt.Sprintf("p%02d", i-1)}}
		}
	}
	g, _ := newTestGraph(t, projects, cfgs)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := g.Load(ctx, fmt.Sprintf("p%02d", i%20))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, g.LoadedIDs(), 20, "racing first-time loads never duplicate nodes")
	for i := 1; i < 20; i++ {
		deps, err := g.DependenciesOf(fmt.Sprintf("p%02d", i))
		require.NoError(t, err)
		assert.Equal(t, []string{fmt.Sprintf("p%02d", i-1)}, deps)
	}
}

func TestCreate_GlobDiscoveryIsCached(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	for _, dir := range []string{"packages/a", "packages/b", "apps/web", "docs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755))
	}

	ws := &config.WorkspaceConfig{Projects: config.ProjectsFromGlobs([]string{"packages/*", "apps/*"})}
	loader := &config.StaticLoader{Workspace: ws}
	engine := cache.NewMemoryEngine()

	g, err := Create(ctx, root, ws, loader, engine)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "web"}, g.IDs())
	assert.Equal(t, 0, engine.ProjectsLoads)

	// A new directory is invisible while the cache entry for these globs exists.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", "c"), 0o755))
	g2, err := Create(ctx, root, ws, loader, engine)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "web"}, g2.IDs())
	assert.Equal(t, 1, engine.ProjectsLoads)

	p, err := g2.Load(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "apps/web", p.Source)
}

func TestCreate_RejectsReservedID(t *testing.T) {
	ws := &config.WorkspaceConfig{Projects: config.ProjectsSourceMap{config.RootNodeID: "x"}}
	_, err := Create(context.Background(), t.TempDir(), ws, &config.StaticLoader{Workspace: ws}, cache.NewMemoryEngine())
	require.ErrorIs(t, err, config.ErrReservedID)
}

func TestDetectProjectsWithGlobs_DuplicateIDs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"apps/shared", "packages/shared"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755))
	}
	_, err := detectProjectsWithGlobs(root, []string{"apps/*", "packages/*"})
	require.Error(t, err)
}
