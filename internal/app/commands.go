package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/actions"
	"github.com/specialistvlad/monogrid/internal/ci"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/depgraph"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/report"
	"github.com/specialistvlad/monogrid/internal/runner"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/specialistvlad/monogrid/internal/vcs"
)

// RunOptions are the inputs of the run command.
type RunOptions struct {
	Targets []string
	// Dependents also runs the same task in projects depending on each target.
	Dependents bool
	// Affected only runs targets affected by uncommitted local changes.
	Affected    bool
	Profile     string
	Passthrough []string
}

// CIOptions are the inputs of the ci command.
type CIOptions struct {
	Base     string
	Head     string
	Job      *int
	JobTotal *int
}

func (a *App) actionsWorkspace() *actions.Workspace {
	return &actions.Workspace{
		Root:     a.root,
		Config:   a.workspace,
		Projects: a.projects,
		Cache:    a.cache,
		CI:       a.config.CI,
		Output:   a.outW,
	}
}

func (a *App) newRunner() *runner.Runner {
	opts := actions.Options(a.actionsWorkspace())
	opts = append(opts,
		runner.WithBail(a.workspace.Runner.Bail),
		runner.WithMetrics(a.metrics),
	)
	return runner.New(a.concurrency(), opts...)
}

// failures converts a finished run into the command error.
func (a *App) failures(results []*action.Action, runErr error) error {
	if report.CountFailures(results, a.config.CI) == 0 {
		return runErr
	}
	if runErr == nil {
		return ErrActionsFailed
	}
	return fmt.Errorf("%w: %w", ErrActionsFailed, runErr)
}

// Run executes the given targets and their dependencies.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	targets, err := target.ParseAll(opts.Targets)
	if err != nil {
		return err
	}
	profile, err := action.ParseProfileType(opts.Profile)
	if err != nil {
		return err
	}

	var touched project.TouchedFilePaths
	if opts.Affected {
		files, err := a.vcs.TouchedFiles(ctx, vcs.TouchedOptions{Local: true})
		if err != nil {
			return fmt.Errorf("gathering touched files: %w", err)
		}
		touched = project.NewTouchedFilePaths(a.root, files...)
	}
	if opts.Dependents {
		// Dependents are only known once every project is loaded.
		if err := a.projects.LoadAll(ctx); err != nil {
			return err
		}
	}

	g := depgraph.New()
	var primary []target.Target
	for _, t := range targets {
		indices, err := g.RunTarget(ctx, t, a.projects, touched)
		if err != nil {
			return err
		}
		for _, idx := range indices {
			resolved := g.Node(idx).Target
			primary = append(primary, resolved)
			if opts.Dependents {
				if err := g.RunTargetDependents(ctx, resolved, a.projects); err != nil {
					return err
				}
			}
		}
	}

	printer := report.New(a.outW, a.config.CI)
	if len(primary) == 0 {
		if opts.Affected {
			printer.Warn("Target(s) " + strings.Join(opts.Targets, ", ") + " not affected by touched files")
		} else {
			printer.Warn("No projects declare task(s) " + strings.Join(opts.Targets, ", "))
		}
		return nil
	}

	actx := action.NewContext(primary, opts.Passthrough, profile, touched)
	r := a.newRunner()
	results, runErr := r.Run(ctx, g, actx)

	var failed []*action.Action
	for _, res := range results {
		if res.Status.IsFailure() {
			failed = append(failed, res)
		}
	}
	printer.Results(failed)
	printer.Stats(results, r.Duration)
	return a.failures(results, runErr)
}

// CI runs every CI eligible target affected between two revisions.
func (a *App) CI(ctx context.Context, opts CIOptions) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	var shard *ci.Shard
	if opts.Job != nil && opts.JobTotal != nil {
		shard = &ci.Shard{Job: *opts.Job, JobTotal: *opts.JobTotal}
	}

	o := &ci.Orchestrator{
		Projects: a.projects,
		VCS:      a.vcs,
		Runner:   a.newRunner(),
		Printer:  report.New(a.outW, a.config.CI),
	}
	result, err := o.Run(ctx, ci.Options{Base: opts.Base, Head: opts.Head, Shard: shard})
	if result == nil {
		return err
	}
	return a.failures(result.Actions, err)
}

// Project prints a single project.
func (a *App) Project(ctx context.Context, id string, asJSON bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	p, err := a.projects.Load(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, string(data))
		return nil
	}

	fmt.Fprintf(a.outW, "%s\n\n", p.ID)
	fmt.Fprintf(a.outW, "Root:       %s\n", p.Root)
	fmt.Fprintf(a.outW, "Source:     %s\n", p.Source)
	fmt.Fprintf(a.outW, "Language:   %s\n", p.Language)
	fmt.Fprintf(a.outW, "Type:       %s\n", p.Type)
	if deps := p.GetDependencies(); len(deps) > 0 {
		fmt.Fprintf(a.outW, "Depends on: %s\n", strings.Join(deps, ", "))
	}
	if ids := p.TaskIDs(); len(ids) > 0 {
		fmt.Fprintln(a.outW, "\nTasks:")
		for _, taskID := range ids {
			task := p.Tasks[taskID]
			command := strings.TrimSpace(task.Command + " " + strings.Join(task.Args, " "))
			fmt.Fprintf(a.outW, "  %s: %s\n", taskID, command)
		}
	}
	return nil
}

// ProjectGraph prints the project graph in DOT format. With an ID only that
// project and its dependencies are loaded.
func (a *App) ProjectGraph(ctx context.Context, id string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if id != "" {
		if _, err := a.projects.Load(ctx, id); err != nil {
			return err
		}
	} else if err := a.projects.LoadAll(ctx); err != nil {
		return err
	}
	fmt.Fprint(a.outW, a.projects.ToDot())
	return nil
}

// DepGraph prints the action graph in DOT format, either for one target or
// for every task in the workspace.
func (a *App) DepGraph(ctx context.Context, raw string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	g := depgraph.New()
	if raw != "" {
		t, err := target.Parse(raw)
		if err != nil {
			return err
		}
		if _, err := g.RunTarget(ctx, t, a.projects, nil); err != nil {
			return err
		}
	} else {
		for _, id := range a.projects.IDs() {
			p, err := a.projects.Load(ctx, id)
			if err != nil {
				return err
			}
			for _, taskID := range p.TaskIDs() {
				if _, err := g.RunTarget(ctx, p.Tasks[taskID].Target, a.projects, nil); err != nil {
					return err
				}
			}
		}
	}
	fmt.Fprint(a.outW, g.ToDot())
	return nil
}

// TouchedFiles prints the touched files as JSON.
func (a *App) TouchedFiles(ctx context.Context, opts vcs.TouchedOptions) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	files, err := a.vcs.TouchedFiles(ctx, opts)
	if err != nil {
		return err
	}
	if files == nil {
		files = []string{}
	}
	data, err := json.MarshalIndent(struct {
		Files   []string           `json:"files"`
		Options vcs.TouchedOptions `json:"options"`
	}{files, opts}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, string(data))
	return nil
}
