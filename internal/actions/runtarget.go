package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/target"
)

// Environment variables exported to every task process.
const (
	EnvTarget        = "MONOGRID_TARGET"
	EnvProjectID     = "MONOGRID_PROJECT_ID"
	EnvProjectRoot   = "MONOGRID_PROJECT_ROOT"
	EnvWorkspaceRoot = "MONOGRID_WORKSPACE_ROOT"
	EnvProfile       = "MONOGRID_PROFILE"
	EnvProfileDir    = "MONOGRID_PROFILE_DIR"
)

// RunTarget runs a task's command. Results are keyed on a fingerprint of the
// task definition, its input files and its upstream fingerprints; a known
// fingerprint yields Cached without running anything.
type RunTarget struct {
	ws *Workspace
}

// runOutcome is shared between callers that claim the same fingerprint.
type runOutcome struct {
	status action.Status
}

func (r *RunTarget) Execute(ctx context.Context, a *action.Action, actx *action.Context) (action.Status, error) {
	t := a.Node.Target
	logger := ctxlog.FromContext(ctx).With("target", t.String())

	p, err := r.ws.Projects.Load(ctx, t.ProjectID)
	if err != nil {
		return action.StatusFailed, err
	}
	task, err := p.GetTask(t.TaskID)
	if err != nil {
		return action.StatusFailed, err
	}

	hasher, err := r.buildHasher(ctx, p, task, actx)
	if err != nil {
		return action.StatusFailed, err
	}
	hash, err := hasher.Hash()
	if err != nil {
		return action.StatusFailed, err
	}

	useCache := task.Options.Cache && r.ws.Cache.Mode().CanRead()
	if useCache {
		exists, err := r.ws.Cache.HashExists(ctx, hash)
		if err != nil {
			return action.StatusFailed, err
		}
		if exists {
			logger.Debug("Fingerprint found in cache", "hash", hash)
			if err := r.recordState(ctx, t, hash, 0, ""); err != nil {
				return action.StatusFailed, err
			}
			return action.StatusCached, nil
		}
	}

	ran := false
	res, _, err := r.ws.flight.Do(hash, func() (any, error) {
		ran = true
		return r.run(ctx, p, task, hasher, hash, actx)
	})
	if err != nil {
		return action.StatusFailed, err
	}
	outcome := res.(runOutcome)
	if !ran && outcome.status == action.StatusPassed {
		logger.Debug("Identical fingerprint ran concurrently, reusing its result", "hash", hash)
		return action.StatusCached, nil
	}
	if outcome.status.IsFailure() {
		return outcome.status, fmt.Errorf("task %s failed", t)
	}
	return outcome.status, nil
}

// buildHasher collects the fingerprint components of a task.
func (r *RunTarget) buildHasher(ctx context.Context, p *project.Project, task *project.Task, actx *action.Context) (*cache.TargetHasher, error) {
	hasher := cache.NewTargetHasher(task.Target.String())
	hasher.Command = task.Command
	hasher.Args = append([]string(nil), task.Args...)
	for k, v := range task.Env {
		hasher.Env[k] = v
	}
	hasher.Outputs = append([]string(nil), task.Outputs...)
	hasher.PassthroughArgs = append([]string(nil), actx.PassthroughFor(task.Target)...)

	files, err := task.ExpandInputFiles(r.ws.Root)
	if err != nil {
		return nil, err
	}
	if err := hasher.HashInputFiles(r.ws.Root, files); err != nil {
		return nil, err
	}

	deps, err := r.upstreamTargets(ctx, p, task)
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		state, err := r.ws.Cache.LoadRunTargetState(ctx, dep)
		if err != nil {
			return nil, err
		}
		hasher.AddDep(dep.String(), state.Hash)
	}
	return hasher, nil
}

// upstreamTargets resolves the task's dependency targets to concrete
// project targets that exist.
func (r *RunTarget) upstreamTargets(ctx context.Context, p *project.Project, task *project.Task) ([]target.Target, error) {
	var out []target.Target
	add := func(projectID, taskID string) error {
		depProject, err := r.ws.Projects.Load(ctx, projectID)
		if err != nil {
			return err
		}
		if _, ok := depProject.Tasks[taskID]; ok {
			out = append(out, target.Target{Scope: target.ScopeProject, ProjectID: projectID, TaskID: taskID})
		}
		return nil
	}

	for _, dep := range task.Deps {
		switch dep.Scope {
		case target.ScopeDeps:
			depIDs, err := r.ws.Projects.DependenciesOf(p.ID)
			if err != nil {
				return nil, err
			}
			for _, depID := range depIDs {
				if err := add(depID, dep.TaskID); err != nil {
					return nil, err
				}
			}
		case target.ScopeOwnSelf:
			if err := add(p.ID, dep.TaskID); err != nil {
				return nil, err
			}
		case target.ScopeProject:
			if err := add(dep.ProjectID, dep.TaskID); err != nil {
				return nil, err
			}
		case target.ScopeAll:
			for _, id := range r.ws.Projects.IDs() {
				if id == p.ID && dep.TaskID == task.ID {
					continue
				}
				if err := add(id, dep.TaskID); err != nil {
					return nil, err
				}
			}
		}
	}
	target.Sort(out)
	return out, nil
}

func (r *RunTarget) run(
	ctx context.Context,
	p *project.Project,
	task *project.Task,
	hasher *cache.TargetHasher,
	hash string,
	actx *action.Context,
) (runOutcome, error) {
	logger := ctxlog.FromContext(ctx).With("target", task.Target.String())

	argv, err := shellwords.Parse(task.Command)
	if err != nil {
		return runOutcome{}, fmt.Errorf("parsing command of %s: %w", task.Target, err)
	}
	if len(argv) == 0 {
		return runOutcome{}, errors.New("empty command")
	}
	argv = append(argv, task.Args...)
	argv = append(argv, actx.PassthroughFor(task.Target)...)

	dir := p.Root
	if task.Options.RunFromWorkspaceRoot {
		dir = r.ws.Root
	}

	env, err := r.environment(p, task, actx)
	if err != nil {
		return runOutcome{}, err
	}

	logger.Info("Running task", "command", argv, "dir", dir)
	res, err := r.ws.processes().Run(ctx, Command{
		Argv:   argv,
		Dir:    dir,
		Env:    env,
		Output: r.ws.output(),
	})
	if err != nil {
		return runOutcome{}, err
	}

	if err := r.recordState(ctx, task.Target, hash, res.ExitCode, res.Output); err != nil {
		return runOutcome{}, err
	}
	if res.ExitCode != 0 {
		logger.Error("Task failed", "exit_code", res.ExitCode)
		return runOutcome{status: action.StatusFailed}, nil
	}

	if task.Options.Cache {
		if err := r.ws.Cache.SaveHash(ctx, hash, hasher); err != nil {
			return runOutcome{}, err
		}
	}
	return runOutcome{status: action.StatusPassed}, nil
}

func (r *RunTarget) recordState(ctx context.Context, t target.Target, hash string, exitCode int, output string) error {
	return r.ws.Cache.SaveRunTargetState(ctx, &cache.RunTargetState{
		Target:      t.String(),
		Hash:        hash,
		ExitCode:    exitCode,
		LastRunTime: time.Now().UnixMilli(),
		Stdout:      output,
	})
}

// environment builds the child process environment: the parent
// environment, then the task env, then the variables exported by the
// runner itself.
func (r *RunTarget) environment(p *project.Project, task *project.Task, actx *action.Context) ([]string, error) {
	env := os.Environ()

	keys := make([]string, 0, len(task.Env))
	for k := range task.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+task.Env[k])
	}

	env = append(env,
		EnvTarget+"="+task.Target.String(),
		EnvProjectID+"="+p.ID,
		EnvProjectRoot+"="+p.Root,
		EnvWorkspaceRoot+"="+r.ws.Root,
	)

	if profile := actx.ProfileFor(task.Target); profile != action.ProfileNone {
		dir := r.ws.Cache.TargetDir(task.Target)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating profile directory: %w", err)
		}
		env = append(env,
			EnvProfile+"="+string(profile),
			EnvProfileDir+"="+filepath.Clean(dir),
		)
	}
	return env, nil
}
