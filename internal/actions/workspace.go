package actions

import (
	"context"
	"io"
	"sync"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/runner"
)

// ProjectSource is the view of the project graph executors need.
type ProjectSource interface {
	WorkspaceRoot() string
	IDs() []string
	Load(ctx context.Context, id string) (*project.Project, error)
	DependenciesOf(id string) ([]string, error)
}

// Workspace is the state shared by every executor during a run.
type Workspace struct {
	Root     string
	Config   *config.WorkspaceConfig
	Projects ProjectSource
	Cache    cache.Engine
	// CI marks a continuous integration run: syncs that write files
	// report Invalid instead of Passed.
	CI bool
	// Processes runs child processes. Defaults to ExecRunner.
	Processes ProcessRunner
	// Output receives child process output. Defaults to io.Discard.
	Output io.Writer

	// mu is the workspace lock. Sync actions that write project files take
	// it exclusively; readers of project files take it shared.
	mu     sync.RWMutex
	flight cache.Flight
}

func (w *Workspace) processes() ProcessRunner {
	if w.Processes == nil {
		return ExecRunner{}
	}
	return w.Processes
}

func (w *Workspace) output() io.Writer {
	if w.Output == nil {
		return io.Discard
	}
	return w.Output
}

// Options registers an executor for every node kind.
func Options(w *Workspace) []runner.Option {
	return []runner.Option{
		runner.WithExecutor(action.KindSetupToolchain, &SetupToolchain{ws: w}),
		runner.WithExecutor(action.KindInstallDeps, &InstallDeps{ws: w}),
		runner.WithExecutor(action.KindSyncProject, &SyncProject{ws: w}),
		runner.WithExecutor(action.KindRunTarget, &RunTarget{ws: w}),
	}
}
