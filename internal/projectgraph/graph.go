package projectgraph

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/metrics"
	"github.com/specialistvlad/monogrid/internal/project"
	"golang.org/x/sync/errgroup"
)

// Graph is the lazily materialized, thread-safe project graph.
type Graph struct {
	workspaceRoot  string
	globalConfig   *config.GlobalProjectConfig
	implicitInputs []string
	loader         config.Loader
	metrics        *metrics.Collectors

	// projectsMap is the discovery map: project ID to source path.
	projectsMap config.ProjectsSourceMap

	// Lock order on the write path: indicesMu, then graphMu.
	indicesMu sync.RWMutex
	indices   map[string]nodeIndex
	graphMu   sync.RWMutex
	graph     *dag
}

// Option configures a Graph.
type Option func(*Graph)

// WithMetrics records loaded projects and discovery cache lookups.
func WithMetrics(m *metrics.Collectors) Option {
	return func(g *Graph) { g.metrics = m }
}

// Create builds an empty graph holding only the synthetic root and resolves
// the discovery map, consulting the cache for glob based workspaces.
func Create(
	ctx context.Context,
	workspaceRoot string,
	workspaceConfig *config.WorkspaceConfig,
	loader config.Loader,
	engine cache.Engine,
	opts ...Option,
) (*Graph, error) {
	if err := config.ValidateWorkspace(workspaceConfig); err != nil {
		return nil, err
	}

	g := &Graph{
		workspaceRoot:  workspaceRoot,
		implicitInputs: append([]string(nil), workspaceConfig.Runner.ImplicitInputs...),
		loader:         loader,
		indices:        make(map[string]nodeIndex),
		graph:          newDAG(),
	}
	for _, opt := range opts {
		opt(g)
	}

	ctxlog.FromContext(ctx).Debug("Creating project graph", "projects", len(workspaceConfig.Projects))

	global, err := loader.LoadGlobalProject(ctx, workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("loading global project config: %w", err)
	}
	g.globalConfig = global

	projectsMap, err := loadProjectsFromCache(ctx, workspaceRoot, workspaceConfig.Projects, engine, g.metrics)
	if err != nil {
		return nil, err
	}
	if _, reserved := projectsMap[config.RootNodeID]; reserved {
		return nil, fmt.Errorf("%w: %q", config.ErrReservedID, config.RootNodeID)
	}
	g.projectsMap = projectsMap

	// Add a virtual root node
	g.graph.addNode(&project.Project{
		ID:     config.RootNodeID,
		Root:   workspaceRoot,
		Source: ".",
		Tasks:  map[string]*project.Task{},
	})

	return g, nil
}

// WorkspaceRoot returns the absolute workspace root.
func (g *Graph) WorkspaceRoot() string {
	return g.workspaceRoot
}

// IDs returns every configured project ID in ascending order, loaded or not.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.projectsMap))
	for id := range g.projectsMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadedIDs returns the IDs of projects currently present in the graph, in
// insertion order.
func (g *Graph) LoadedIDs() []string {
	g.graphMu.RLock()
	defer g.graphMu.RUnlock()

	out := g.graph.outgoing[rootIndex]
	ids := make([]string, 0, len(out))
	for _, idx := range out {
		ids = append(ids, g.graph.node(idx).ID)
	}
	return ids
}

// Load returns a snapshot of the project with the given ID, loading it and
// its dependencies into the graph first when needed.
func (g *Graph) Load(ctx context.Context, id string) (*project.Project, error) {
	// Read path: the project is usually already loaded.
	g.indicesMu.RLock()
	if idx, ok := g.indices[id]; ok {
		g.graphMu.RLock()
		p := g.graph.node(idx).Clone()
		g.graphMu.RUnlock()
		g.indicesMu.RUnlock()
		return p, nil
	}
	g.indicesMu.RUnlock()

	// Write path.
	g.indicesMu.Lock()
	defer g.indicesMu.Unlock()
	g.graphMu.Lock()
	defer g.graphMu.Unlock()

	pending := make(map[string]*project.Project)
	if err := g.collectUnloaded(ctx, id, pending); err != nil {
		return nil, err
	}
	if err := detectPendingCycles(pending); err != nil {
		return nil, err
	}

	idx, err := g.internalLoad(ctx, id, pending, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	g.metrics.SetProjectsLoaded(len(g.indices))
	return g.graph.node(idx).Clone(), nil
}

// LoadAll forces every configured project into the graph. Configuration
// parsing runs in parallel; insertion happens under the write locks.
func (g *Graph) LoadAll(ctx context.Context) error {
	ids := g.IDs()

	var mu sync.Mutex
	pending := make(map[string]*project.Project, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, id := range ids {
		if g.isLoaded(id) {
			continue
		}
		eg.Go(func() error {
			p, err := g.buildProject(egCtx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			pending[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := detectPendingCycles(pending); err != nil {
		return err
	}

	g.indicesMu.Lock()
	defer g.indicesMu.Unlock()
	g.graphMu.Lock()
	defer g.graphMu.Unlock()

	for _, id := range ids {
		if _, err := g.internalLoad(ctx, id, pending, make(map[string]bool)); err != nil {
			return err
		}
	}
	g.metrics.SetProjectsLoaded(len(g.indices))
	ctxlog.FromContext(ctx).Debug("Loaded all projects into the graph", "count", len(ids))
	return nil
}

func (g *Graph) isLoaded(id string) bool {
	g.indicesMu.RLock()
	defer g.indicesMu.RUnlock()
	_, ok := g.indices[id]
	return ok
}

// buildProject parses one project's configuration. It takes no graph locks.
func (g *Graph) buildProject(ctx context.Context, id string) (*project.Project, error) {
	source, ok := g.projectsMap[id]
	if !ok {
		return nil, &UnconfiguredIDError{ID: id}
	}

	scope := config.ProjectScope{
		ID:            id,
		Source:        source,
		Root:          filepath.Join(g.workspaceRoot, filepath.FromSlash(source)),
		WorkspaceRoot: g.workspaceRoot,
	}
	cfg, err := g.loader.LoadProject(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading config for project %q: %w", id, err)
	}
	return project.New(scope, g.globalConfig, cfg, g.implicitInputs)
}

// collectUnloaded parses id and its transitive dependencies that are not yet
// in the graph. Caller holds the write locks.
func (g *Graph) collectUnloaded(ctx context.Context, id string, into map[string]*project.Project) error {
	if id == config.RootNodeID {
		return nil
	}
	if _, ok := g.indices[id]; ok {
		return nil
	}
	if _, ok := into[id]; ok {
		return nil
	}

	p, err := g.buildProject(ctx, id)
	if err != nil {
		return err
	}
	into[id] = p
	for _, dep := range p.GetDependencies() {
		if err := g.collectUnloaded(ctx, dep, into); err != nil {
			return err
		}
	}
	return nil
}

func detectPendingCycles(pending map[string]*project.Project) error {
	deps := make(map[string][]string, len(pending))
	for id, p := range pending {
		deps[id] = p.GetDependencies()
	}
	return config.DetectDependencyCycles(deps)
}

// internalLoad inserts a project and, recursively, its dependencies.
// It is idempotent. Caller holds both write locks.
func (g *Graph) internalLoad(
	ctx context.Context,
	id string,
	pending map[string]*project.Project,
	visiting map[string]bool,
) (nodeIndex, error) {
	logger := ctxlog.FromContext(ctx)

	if id == config.RootNodeID {
		return rootIndex, nil
	}
	// Already loaded, abort early
	if idx, ok := g.indices[id]; ok {
		logger.Debug("Project already exists in the project graph", "project", id)
		return idx, nil
	}
	if visiting[id] {
		return 0, fmt.Errorf("%w: project %q is part of a cycle", config.ErrDependencyCycle, id)
	}

	logger.Debug("Project does not exist in the project graph, attempting to load", "project", id)

	p, ok := pending[id]
	if !ok {
		var err error
		if p, err = g.buildProject(ctx, id); err != nil {
			return 0, err
		}
	}
	dependsOn := p.GetDependencies()

	// Insert the project into the graph
	idx := g.graph.addNode(p)
	g.graph.addEdge(rootIndex, idx)
	g.indices[id] = idx

	if len(dependsOn) > 0 {
		logger.Debug("Adding dependencies to project", "project", id, "dependencies", dependsOn)

		visiting[id] = true
		for _, depID := range dependsOn {
			depIdx, err := g.internalLoad(ctx, depID, pending, visiting)
			if err != nil {
				return 0, err
			}
			g.graph.addEdge(idx, depIdx)
		}
		delete(visiting, id)
	}

	return idx, nil
}

// DependenciesOf returns the direct dependency IDs of a loaded project.
func (g *Graph) DependenciesOf(id string) ([]string, error) {
	return g.neighbors(id, func(d *dag, idx nodeIndex) []nodeIndex { return d.outgoing[idx] })
}

// DependentsOf returns the IDs of loaded projects that directly depend on
// id. The synthetic root is never included. Call LoadAll first to see every
// dependent in the workspace.
func (g *Graph) DependentsOf(id string) ([]string, error) {
	return g.neighbors(id, func(d *dag, idx nodeIndex) []nodeIndex { return d.incoming[idx] })
}

func (g *Graph) neighbors(id string, dir func(*dag, nodeIndex) []nodeIndex) ([]string, error) {
	g.indicesMu.RLock()
	defer g.indicesMu.RUnlock()

	idx, ok := g.indices[id]
	if !ok {
		if _, configured := g.projectsMap[id]; !configured {
			return nil, &UnconfiguredIDError{ID: id}
		}
		return nil, fmt.Errorf("%w: %q", ErrNotLoaded, id)
	}

	g.graphMu.RLock()
	defer g.graphMu.RUnlock()

	ids := []string{}
	for _, n := range dir(g.graph, idx) {
		if n == rootIndex {
			continue
		}
		ids = append(ids, g.graph.node(n).ID)
	}
	sort.Strings(ids)
	return ids, nil
}
