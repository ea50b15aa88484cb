package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-shellwords"
	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/project"
)

// InstallDeps runs the workspace install command. It is cached on a
// fingerprint of the install inputs; a failure aborts the run.
type InstallDeps struct {
	ws *Workspace
}

func (i *InstallDeps) Execute(ctx context.Context, _ *action.Action, _ *action.Context) (action.Status, error) {
	logger := ctxlog.FromContext(ctx)
	install := i.ws.Config.Install
	if install == nil || install.Command == "" {
		logger.Debug("No install command configured, skipping")
		return action.StatusSkipped, nil
	}

	hash, err := i.fingerprint(install)
	if err != nil {
		return action.StatusFailedAndAbort, err
	}
	if exists, err := i.ws.Cache.HashExists(ctx, hash); err != nil {
		return action.StatusFailedAndAbort, err
	} else if exists {
		logger.Debug("Install inputs unchanged, using cache", "hash", hash)
		return action.StatusCached, nil
	}

	argv, err := shellwords.Parse(install.Command)
	if err != nil {
		return action.StatusFailedAndAbort, fmt.Errorf("parsing install command: %w", err)
	}

	logger.Info("Installing dependencies", "command", install.Command)
	res, err := i.ws.processes().Run(ctx, Command{
		Argv:   argv,
		Dir:    i.ws.Root,
		Env:    os.Environ(),
		Output: i.ws.output(),
	})
	if err != nil {
		return action.StatusFailedAndAbort, err
	}
	if res.ExitCode != 0 {
		return action.StatusFailedAndAbort, fmt.Errorf("install command exited with code %d", res.ExitCode)
	}

	if err := i.ws.Cache.SaveHash(ctx, hash, map[string]any{"command": install.Command, "inputs": install.Inputs}); err != nil {
		return action.StatusFailedAndAbort, err
	}
	return action.StatusPassed, nil
}

// fingerprint hashes the install command and its input files, which are
// workspace relative.
func (i *InstallDeps) fingerprint(install *config.InstallConfig) (string, error) {
	hasher := cache.NewTargetHasher("(install)")
	hasher.Command = install.Command

	files, err := project.ExpandWorkspaceInputs(i.ws.Root, install.Inputs)
	if err != nil {
		return "", err
	}
	if err := hasher.HashInputFiles(i.ws.Root, files); err != nil {
		return "", err
	}
	return hasher.Hash()
}
