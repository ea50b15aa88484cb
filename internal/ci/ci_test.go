package ci

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/projectgraph"
	"github.com/specialistvlad/monogrid/internal/report"
	"github.com/specialistvlad/monogrid/internal/runner"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/specialistvlad/monogrid/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type ranTargets struct {
	mu  sync.Mutex
	ran []string
}

func (r *ranTargets) executor() runner.Executor {
	return runner.ExecutorFunc(func(_ context.Context, a *action.Action, _ *action.Context) (action.Status, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ran = append(r.ran, a.Node.Target.String())
		return action.StatusPassed, nil
	})
}

func (r *ranTargets) sorted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.ran...)
	sort.Strings(out)
	return out
}

// newOrchestrator builds a workspace where app and cli depend on lib, and
// docs is independent.
func newOrchestrator(t *testing.T, touched vcs.Static) (*Orchestrator, *ranTargets, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	noCI := false

	ws := &config.WorkspaceConfig{Projects: config.ProjectsSourceMap{
		"app":  "apps/app",
		"cli":  "apps/cli",
		"docs": "docs",
		"lib":  "packages/lib",
	}}
	loader := &config.StaticLoader{
		Workspace: ws,
		Global: &config.GlobalProjectConfig{Tasks: map[string]*config.TaskConfig{
			"test": {Command: "npm test"},
		}},
		Projects: map[string]*config.ProjectConfig{
			"app": {DependsOn: []string{"lib"}},
			"cli": {DependsOn: []string{"lib"}, Tasks: map[string]*config.TaskConfig{
				"release": {Command: "npm publish", Options: config.TaskOptionsConfig{RunInCI: &noCI}},
			}},
			"lib": {Tasks: map[string]*config.TaskConfig{
				"release": {Command: "npm publish", Options: config.TaskOptionsConfig{RunInCI: &noCI}},
			}},
		},
	}
	pg, err := projectgraph.Create(ctx, t.TempDir(), ws, loader, cache.NewMemoryEngine())
	require.NoError(t, err)

	ran := &ranTargets{}
	var out bytes.Buffer
	return &Orchestrator{
		Projects: pg,
		VCS:      touched,
		Runner:   runner.New(2, runner.WithExecutor(action.KindRunTarget, ran.executor())),
		Printer:  report.New(&out, true),
	}, ran, &out
}

func TestOrchestrator_RunsAffectedTargetsAndDependents(t *testing.T) {
	o, ran, out := newOrchestrator(t, vcs.Static{"packages/lib/src/index.ts"})

	result, err := o.Run(context.Background(), Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"lib:test"}, target.Strings(result.Targets), "release tasks are not run in CI")
	assert.Equal(t, []string{"app:test", "cli:test", "lib:test"}, ran.sorted(), "dependents of affected targets run too")
	assert.Contains(t, out.String(), "--- Gathering touched files\n")
	assert.Contains(t, out.String(), "--- Results\n")
	assert.Contains(t, out.String(), "pass RunTarget(lib:test)")
}

func TestOrchestrator_NothingTouched(t *testing.T) {
	o, ran, out := newOrchestrator(t, vcs.Static{"README.md"})

	result, err := o.Run(context.Background(), Options{})

	require.NoError(t, err)
	assert.Empty(t, result.Targets)
	assert.Empty(t, ran.sorted())
	assert.Contains(t, out.String(), "No targets to run based on touched files")
}

func TestOrchestrator_Sharded(t *testing.T) {
	touched := vcs.Static{"apps/app/a.ts", "apps/cli/c.ts", "docs/index.md"}

	var all []string
	for job := 0; job < 2; job++ {
		o, _, _ := newOrchestrator(t, touched)
		result, err := o.Run(context.Background(), Options{Shard: &Shard{Job: job, JobTotal: 2}})
		require.NoError(t, err)
		all = append(all, target.Strings(result.Targets)...)
	}

	assert.Equal(t, []string{"app:test", "cli:test", "docs:test"}, all)
}

func TestOrchestrator_InvalidShard(t *testing.T) {
	o, ran, _ := newOrchestrator(t, vcs.Static{"docs/index.md"})

	_, err := o.Run(context.Background(), Options{Shard: &Shard{Job: 2, JobTotal: 2}})

	assert.ErrorIs(t, err, ErrInvalidShard)
	assert.Empty(t, ran.sorted())
}

func TestOrchestrator_GatherRunnableTargetsLoadsEveryProject(t *testing.T) {
	o, _, _ := newOrchestrator(t, nil)
	targets, err := o.GatherRunnableTargets(context.Background(), project.TouchedFilePaths{})

	require.NoError(t, err)
	assert.Empty(t, targets)
	assert.ElementsMatch(t, []string{"app", "cli", "docs", "lib"}, o.Projects.(*projectgraph.Graph).LoadedIDs())
}
