package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
)

// SetupToolchain prepares the workspace cache directory. A failure here
// aborts the run.
type SetupToolchain struct {
	ws *Workspace
}

func (s *SetupToolchain) Execute(ctx context.Context, _ *action.Action, _ *action.Context) (action.Status, error) {
	dir := filepath.Join(s.ws.Root, filepath.FromSlash(cache.DirName))
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return action.StatusSkipped, nil
	}
	if !s.ws.Cache.Mode().CanWrite() {
		return action.StatusSkipped, nil
	}

	ctxlog.FromContext(ctx).Debug("Creating cache directory", "dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return action.StatusFailedAndAbort, fmt.Errorf("creating cache directory: %w", err)
	}
	return action.StatusPassed, nil
}
