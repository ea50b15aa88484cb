package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/depgraph"
	"github.com/specialistvlad/monogrid/internal/metrics"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrAborted is part of the run error when an action aborted the run.
var ErrAborted = errors.New("run aborted")

// Runner executes action graphs.
type Runner struct {
	concurrency int
	bail        bool
	executors   map[action.NodeKind]Executor
	metrics     *metrics.Collectors

	// Duration of the last Run.
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithBail turns every failure into an abort of the whole run.
func WithBail(bail bool) Option {
	return func(r *Runner) { r.bail = bail }
}

// WithExecutor registers the executor for a node kind. Kinds without an
// executor finish as Skipped.
func WithExecutor(kind action.NodeKind, e Executor) Option {
	return func(r *Runner) { r.executors[kind] = e }
}

// WithMetrics records per-action and per-run metrics.
func WithMetrics(m *metrics.Collectors) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a runner executing at most concurrency actions at once.
func New(concurrency int, opts ...Option) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	r := &Runner{
		concurrency: concurrency,
		executors:   make(map[action.NodeKind]Executor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type completion struct {
	idx    depgraph.NodeIndex
	status action.Status
	err    error
}

// Run drains the graph and returns the finished actions in completion order.
// The error aggregates every failure; it wraps ErrAborted when the run was
// aborted.
func (r *Runner) Run(ctx context.Context, g *depgraph.DepGraph, actx *action.Context) ([]*action.Action, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	defer func() {
		r.Duration = time.Since(start)
		r.metrics.ObserveRun(r.Duration)
	}()

	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	if actx == nil {
		actx = action.NewContext(nil, nil, action.ProfileNone, nil)
	}

	total := g.NodeCount()
	actions := make([]*action.Action, total)
	remaining := make([]int, total)
	var ready []depgraph.NodeIndex
	for i := 0; i < total; i++ {
		idx := depgraph.NodeIndex(i)
		actions[i] = action.New(g.Node(idx))
		remaining[i] = len(g.DependenciesOf(idx))
		if remaining[i] == 0 {
			ready = append(ready, idx)
		}
	}
	logger.Debug("Initialized runner", "actions", total, "ready", len(ready), "concurrency", r.concurrency)

	done := make(chan completion, total)
	var eg errgroup.Group
	eg.SetLimit(r.concurrency)

	var (
		results  = make([]*action.Action, 0, total)
		inFlight int
		aborted  bool
		runErr   error
		ctxDone  = ctx.Done()
	)

	record := func(a *action.Action) {
		results = append(results, a)
		r.metrics.ObserveAction(a.Node.Kind.String(), a.Status.String(), a.Duration)
	}

	var skipDependents func(idx depgraph.NodeIndex)
	skipDependents = func(idx depgraph.NodeIndex) {
		for _, dep := range g.DependentsOf(idx) {
			a := actions[dep]
			if a.Status.IsTerminal() {
				continue
			}
			logger.Warn("Skipping dependent action due to upstream failure", "action", a.Label, "dependency", actions[idx].Label)
			a.Finish(action.StatusSkipped, fmt.Errorf("skipped due to upstream failure of %s", actions[idx].Label))
			record(a)
			skipDependents(dep)
		}
	}

	logger.Info("Waiting for all actions to complete...")
	for {
		if !aborted && ctx.Err() != nil {
			logger.Warn("Context canceled, no further actions will start")
			aborted = true
			runErr = multierr.Append(runErr, ctx.Err())
			ctxDone = nil
		}
		for !aborted && len(ready) > 0 && inFlight < r.concurrency {
			idx := ready[0]
			ready = ready[1:]
			a := actions[idx]
			inFlight++
			eg.Go(func() error {
				status, err := r.execute(ctx, a, actx)
				done <- completion{idx: idx, status: status, err: err}
				return nil
			})
		}
		if inFlight == 0 {
			break
		}

		var c completion
		select {
		case c = <-done:
		case <-ctxDone:
			logger.Warn("Context canceled, no further actions will start")
			aborted = true
			runErr = multierr.Append(runErr, ctx.Err())
			ctxDone = nil
			continue
		}
		inFlight--

		a := actions[c.idx]
		status := c.status
		if status == action.StatusFailed && r.bail {
			status = action.StatusFailedAndAbort
		}
		a.Finish(status, c.err)
		record(a)

		switch {
		case status.UnblocksDependents():
			logger.Info("Action finished", "action", a.Label, "status", status.String(), "duration", a.Duration)
			for _, dep := range g.DependentsOf(c.idx) {
				remaining[dep]--
				if remaining[dep] == 0 && !actions[dep].Status.IsTerminal() {
					ready = append(ready, dep)
				}
			}
		case status == action.StatusFailed:
			logger.Error("Action failed", "action", a.Label, "error", a.Error)
			runErr = multierr.Append(runErr, fmt.Errorf("%s: %w", a.Label, a.Error))
			skipDependents(c.idx)
		case status == action.StatusFailedAndAbort:
			logger.Error("Action failed, aborting run", "action", a.Label, "error", a.Error)
			runErr = multierr.Append(runErr, fmt.Errorf("%s: %w", a.Label, a.Error))
			aborted = true
		}
	}

	// Every worker has reported on done; this only reclaims goroutines.
	_ = eg.Wait()
	logger.Info("All actions completed", "completed", len(results), "total", total)

	if aborted {
		runErr = multierr.Append(runErr, ErrAborted)
	}
	return results, runErr
}

// execute runs one action on its executor, converting panics into an
// aborting failure.
func (r *Runner) execute(ctx context.Context, a *action.Action, actx *action.Context) (status action.Status, err error) {
	logger := ctxlog.FromContext(ctx).With("action", a.Label)
	r.metrics.ActionStarted()
	defer r.metrics.ActionFinished()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Action panicked", "panic", rec)
			status = action.StatusFailedAndAbort
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	a.Start()
	exec, ok := r.executors[a.Node.Kind]
	if !ok {
		logger.Debug("No executor registered for action kind, skipping")
		return action.StatusSkipped, nil
	}

	logger.Debug("Worker picked up action for execution")
	status, err = exec.Execute(ctx, a, actx)
	switch {
	case !status.IsTerminal():
		if err == nil {
			err = errors.New("executor returned a non-terminal status")
		}
		return action.StatusFailed, err
	case err != nil && !status.IsFailure():
		return action.StatusFailed, err
	case status.IsFailure() && err == nil:
		return status, errors.New(status.String())
	}
	return status, err
}
