package depgraph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/target"
)

var (
	// ErrCycle is returned when the action graph contains a cycle.
	ErrCycle = errors.New("action graph cycle")
	// ErrUnknownTask is returned when a target names a task its project lacks.
	ErrUnknownTask = errors.New("unknown task")
)

// NodeIndex identifies a node within one DepGraph.
type NodeIndex int

// ProjectLoader is the view of the project graph the action graph needs.
type ProjectLoader interface {
	WorkspaceRoot() string
	IDs() []string
	Load(ctx context.Context, id string) (*project.Project, error)
	DependenciesOf(id string) ([]string, error)
	DependentsOf(id string) ([]string, error)
}

// DepGraph is the action graph.
type DepGraph struct {
	mu         sync.RWMutex
	nodes      []action.Node
	indices    map[action.Node]NodeIndex
	deps       map[NodeIndex][]NodeIndex
	dependents map[NodeIndex][]NodeIndex
	edgeOrder  [][2]NodeIndex
}

// New creates a graph holding only the SetupToolchain root action.
func New() *DepGraph {
	g := &DepGraph{
		indices:    make(map[action.Node]NodeIndex),
		deps:       make(map[NodeIndex][]NodeIndex),
		dependents: make(map[NodeIndex][]NodeIndex),
	}
	g.getOrInsert(action.SetupToolchainNode())
	return g
}

// getOrInsert returns the node's index, inserting it when absent. The
// second return value is true when the node was newly inserted.
func (g *DepGraph) getOrInsert(n action.Node) (NodeIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if idx, ok := g.indices[n]; ok {
		return idx, false
	}
	g.nodes = append(g.nodes, n)
	idx := NodeIndex(len(g.nodes) - 1)
	g.indices[n] = idx
	return idx, true
}

// AddNode inserts n if absent and returns its index.
func (g *DepGraph) AddNode(n action.Node) NodeIndex {
	idx, _ := g.getOrInsert(n)
	return idx
}

// AddEdge records that `from` depends on `to`: `to` must run first.
func (g *DepGraph) AddEdge(from, to NodeIndex) error {
	return g.addEdge(from, to)
}

// addEdge records that `from` depends on `to`: `to` must run first.
func (g *DepGraph) addEdge(from, to NodeIndex) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", g.label(from), g.label(from))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.deps[from] {
		if existing == to {
			return nil
		}
	}
	g.deps[from] = append(g.deps[from], to)
	g.dependents[to] = append(g.dependents[to], from)
	g.edgeOrder = append(g.edgeOrder, [2]NodeIndex{from, to})
	return nil
}

func (g *DepGraph) label(i NodeIndex) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[i].Label()
}

// InstallDeps ensures the workspace install action exists.
func (g *DepGraph) InstallDeps() (NodeIndex, error) {
	idx, inserted := g.getOrInsert(action.InstallDepsNode())
	if inserted {
		if err := g.addEdge(idx, 0); err != nil {
			return 0, err
		}
	}
	return idx, nil
}

// SyncProject ensures a sync action exists for p and for every project it
// depends on.
func (g *DepGraph) SyncProject(ctx context.Context, p *project.Project, pg ProjectLoader) (NodeIndex, error) {
	idx, inserted := g.getOrInsert(action.SyncProjectNode(p.ID))
	if !inserted {
		return idx, nil
	}
	ctxlog.FromContext(ctx).Debug("Adding sync project action", "project", p.ID)

	if err := g.addEdge(idx, 0); err != nil {
		return 0, err
	}

	depIDs, err := pg.DependenciesOf(p.ID)
	if err != nil {
		return 0, err
	}
	for _, depID := range depIDs {
		dep, err := pg.Load(ctx, depID)
		if err != nil {
			return 0, err
		}
		depIdx, err := g.SyncProject(ctx, dep, pg)
		if err != nil {
			return 0, err
		}
		if err := g.addEdge(idx, depIdx); err != nil {
			return 0, err
		}
	}
	return idx, nil
}

// RunTarget ensures run actions exist for t and, recursively, for every
// task it depends on. When touched is non-nil, targets whose task is not
// affected by it are left out. The returned indices are the run actions
// for t itself: one for a fully qualified target, one per matching project
// for `:task`, and none when nothing was affected.
func (g *DepGraph) RunTarget(ctx context.Context, t target.Target, pg ProjectLoader, touched project.TouchedFilePaths) ([]NodeIndex, error) {
	switch t.Scope {
	case target.ScopeProject:
		p, err := pg.Load(ctx, t.ProjectID)
		if err != nil {
			return nil, err
		}
		idx, ok, err := g.insertTarget(ctx, p, t.TaskID, pg, touched, true)
		if err != nil || !ok {
			return nil, err
		}
		return []NodeIndex{idx}, nil

	case target.ScopeAll:
		var out []NodeIndex
		for _, id := range pg.IDs() {
			p, err := pg.Load(ctx, id)
			if err != nil {
				return nil, err
			}
			idx, ok, err := g.insertTarget(ctx, p, t.TaskID, pg, touched, false)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, idx)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("target %s must name a project", t)
}

// insertTarget adds the run action for one project's task. With strict
// unset, projects without the task are silently ignored.
func (g *DepGraph) insertTarget(
	ctx context.Context,
	p *project.Project,
	taskID string,
	pg ProjectLoader,
	touched project.TouchedFilePaths,
	strict bool,
) (NodeIndex, bool, error) {
	task, ok := p.Tasks[taskID]
	if !ok {
		if !strict {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: project %q has no task %q", ErrUnknownTask, p.ID, taskID)
	}

	if touched != nil {
		affected, err := task.IsAffected(pg.WorkspaceRoot(), touched)
		if err != nil {
			return 0, false, err
		}
		if !affected {
			ctxlog.FromContext(ctx).Debug("Target not affected by touched files, skipping", "target", task.Target.String())
			return 0, false, nil
		}
	}

	idx, err := g.insertTask(ctx, p, task, pg)
	if err != nil {
		return 0, false, err
	}
	return idx, true, nil
}

func (g *DepGraph) insertTask(ctx context.Context, p *project.Project, task *project.Task, pg ProjectLoader) (NodeIndex, error) {
	idx, inserted := g.getOrInsert(action.RunTargetNode(task.Target))
	if !inserted {
		return idx, nil
	}
	ctxlog.FromContext(ctx).Debug("Adding run target action", "target", task.Target.String())

	installIdx, err := g.InstallDeps()
	if err != nil {
		return 0, err
	}
	if err := g.addEdge(idx, installIdx); err != nil {
		return 0, err
	}
	syncIdx, err := g.SyncProject(ctx, p, pg)
	if err != nil {
		return 0, err
	}
	if err := g.addEdge(idx, syncIdx); err != nil {
		return 0, err
	}

	for _, dep := range task.Deps {
		depIdxs, err := g.resolveTaskDep(ctx, p, dep, pg)
		if err != nil {
			return 0, fmt.Errorf("resolving dependency %s of %s: %w", dep, task.Target, err)
		}
		for _, depIdx := range depIdxs {
			if err := g.addEdge(idx, depIdx); err != nil {
				return 0, err
			}
		}
	}
	return idx, nil
}

// resolveTaskDep turns one declared task dependency into run actions.
func (g *DepGraph) resolveTaskDep(ctx context.Context, owner *project.Project, dep target.Target, pg ProjectLoader) ([]NodeIndex, error) {
	switch dep.Scope {
	case target.ScopeDeps:
		depIDs, err := pg.DependenciesOf(owner.ID)
		if err != nil {
			return nil, err
		}
		var out []NodeIndex
		for _, depID := range depIDs {
			depProject, err := pg.Load(ctx, depID)
			if err != nil {
				return nil, err
			}
			idx, ok, err := g.insertTarget(ctx, depProject, dep.TaskID, pg, nil, false)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, idx)
			}
		}
		return out, nil

	case target.ScopeOwnSelf:
		return g.RunTarget(ctx, dep.WithProject(owner.ID), pg, nil)
	}
	return g.RunTarget(ctx, dep, pg, nil)
}

// RunTargetDependents adds run actions for every project that directly
// depends on t's project and declares the same task. The project graph
// must have been fully loaded for dependents to be complete.
func (g *DepGraph) RunTargetDependents(ctx context.Context, t target.Target, pg ProjectLoader) error {
	if t.Scope != target.ScopeProject {
		return fmt.Errorf("target %s must name a project", t)
	}
	dependents, err := pg.DependentsOf(t.ProjectID)
	if err != nil {
		return err
	}
	for _, dependentID := range dependents {
		dependent, err := pg.Load(ctx, dependentID)
		if err != nil {
			return err
		}
		if _, ok := dependent.Tasks[t.TaskID]; !ok {
			continue
		}
		if _, err := g.RunTarget(ctx, t.WithProject(dependentID), pg, nil); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of actions in the graph.
func (g *DepGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Node returns the node at idx.
func (g *DepGraph) Node(idx NodeIndex) action.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[idx]
}

// IndexOf returns the index of n, if present.
func (g *DepGraph) IndexOf(n action.Node) (NodeIndex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx, ok := g.indices[n]
	return idx, ok
}

// Labels returns every node label in insertion order.
func (g *DepGraph) Labels() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Label()
	}
	return out
}

// DependenciesOf returns the actions that must finish before idx, sorted.
func (g *DepGraph) DependenciesOf(idx NodeIndex) []NodeIndex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedCopy(g.deps[idx])
}

// DependentsOf returns the actions waiting on idx, sorted.
func (g *DepGraph) DependentsOf(idx NodeIndex) []NodeIndex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedCopy(g.dependents[idx])
}

func sortedCopy(in []NodeIndex) []NodeIndex {
	out := append([]NodeIndex(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectCycles checks the graph for any cycles. It returns an error naming
// the first node found on a cycle.
func (g *DepGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and not part of a cycle.
	// temporary: on the current recursion stack.
	// unvisited: all other nodes.
	permanent := make(map[NodeIndex]bool)
	temporary := make(map[NodeIndex]bool)

	var visit func(n NodeIndex) error
	visit = func(n NodeIndex) error {
		if permanent[n] {
			return nil
		}
		if temporary[n] {
			return fmt.Errorf("%w involving %s", ErrCycle, g.nodes[n].Label())
		}
		temporary[n] = true
		for _, dep := range g.deps[n] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, n)
		permanent[n] = true
		return nil
	}

	for i := range g.nodes {
		if err := visit(NodeIndex(i)); err != nil {
			return err
		}
	}
	return nil
}
