package ci

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/depgraph"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/report"
	"github.com/specialistvlad/monogrid/internal/runner"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/specialistvlad/monogrid/internal/vcs"
)

// ProjectGraph is the project graph as the orchestrator uses it.
type ProjectGraph interface {
	depgraph.ProjectLoader
	LoadAll(ctx context.Context) error
}

// Options select the compared revisions and the shard of this job.
type Options struct {
	Base  string
	Head  string
	Shard *Shard
}

// Result is the outcome of a CI run.
type Result struct {
	Targets  []target.Target
	Actions  []*action.Action
	Duration time.Duration
}

// Orchestrator wires the collaborators of a CI run.
type Orchestrator struct {
	Projects ProjectGraph
	VCS      vcs.Provider
	Runner   *runner.Runner
	Printer  *report.Printer
}

// Run executes the full CI pipeline. The returned error is the runner's
// aggregate error; failed actions are also visible in the result.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	touched, err := o.gatherTouchedFiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	targets, err := o.GatherRunnableTargets(ctx, touched)
	if err != nil {
		return nil, err
	}
	result := &Result{}
	if len(targets) == 0 {
		return result, nil
	}

	if opts.Shard != nil {
		o.Printer.Header("Distributing targets across jobs")
		o.Printer.Line("Job index: %d", opts.Shard.Job)
		o.Printer.Line("Job total: %d", opts.Shard.JobTotal)
		o.Printer.Line("Batch size: %d", len(targets)/max(opts.Shard.JobTotal, 1))
		o.Printer.Line("Batched targets:")
	}
	targets, err = DistributeTargetsAcrossJobs(targets, opts.Shard)
	if err != nil {
		return nil, err
	}
	if opts.Shard != nil {
		o.Printer.Targets(targets)
	}
	result.Targets = targets

	g, err := o.GenerateDepGraph(ctx, targets)
	if err != nil {
		return nil, err
	}

	o.Printer.Header("Running all targets")
	logger.Info("Running CI targets", "targets", len(targets), "actions", g.NodeCount())
	actx := action.NewContext(nil, nil, action.ProfileNone, touched)
	results, runErr := o.Runner.Run(ctx, g, actx)
	result.Actions = results
	result.Duration = o.Runner.Duration

	o.Printer.Header("Results")
	o.Printer.Results(results)
	o.Printer.Stats(results, o.Runner.Duration)
	return result, runErr
}

func (o *Orchestrator) gatherTouchedFiles(ctx context.Context, opts Options) (project.TouchedFilePaths, error) {
	o.Printer.Header("Gathering touched files")
	files, err := o.VCS.TouchedFiles(ctx, vcs.TouchedOptions{Base: opts.Base, Head: opts.Head})
	if err != nil {
		return nil, fmt.Errorf("gathering touched files: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Gathered touched files", "count", len(files))
	return project.NewTouchedFilePaths(o.Projects.WorkspaceRoot(), files...), nil
}

// GatherRunnableTargets loads every project and returns each CI eligible
// task affected by touched, in target order.
func (o *Orchestrator) GatherRunnableTargets(ctx context.Context, touched project.TouchedFilePaths) ([]target.Target, error) {
	logger := ctxlog.FromContext(ctx)
	o.Printer.Header("Gathering runnable targets")

	// Required for dependents
	if err := o.Projects.LoadAll(ctx); err != nil {
		return nil, err
	}

	var targets []target.Target
	for _, id := range o.Projects.IDs() {
		p, err := o.Projects.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, taskID := range p.TaskIDs() {
			task := p.Tasks[taskID]
			if !task.ShouldRunInCI() {
				logger.Debug("Not running target because run in CI is disabled", "target", task.Target.String())
				continue
			}
			affected, err := task.IsAffected(o.Projects.WorkspaceRoot(), touched)
			if err != nil {
				return nil, err
			}
			if affected {
				targets = append(targets, task.Target)
			}
		}
	}
	target.Sort(targets)

	if len(targets) == 0 {
		o.Printer.Warn("No targets to run based on touched files")
	} else {
		o.Printer.Targets(targets)
	}
	return targets, nil
}

// GenerateDepGraph plans each target with its dependencies and, so that
// consumers are verified too, its direct dependents.
func (o *Orchestrator) GenerateDepGraph(ctx context.Context, targets []target.Target) (*depgraph.DepGraph, error) {
	o.Printer.Header("Generating dependency graph")

	g := depgraph.New()
	for _, t := range targets {
		if _, err := g.RunTarget(ctx, t, o.Projects, nil); err != nil {
			return nil, err
		}
		if err := g.RunTargetDependents(ctx, t, o.Projects); err != nil {
			return nil, err
		}
	}

	o.Printer.Line("Target count: %d", len(targets))
	o.Printer.Line("Action count: %d", g.NodeCount())
	return g, nil
}
