package projectgraph

import (
	"context"
	"fmt"
	"path"

	"github.com/gobwas/glob"
	"github.com/specialistvlad/monogrid/internal/cache"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/fsutil"
	"github.com/specialistvlad/monogrid/internal/metrics"
)

// loadProjectsFromCache resolves the discovery map. Explicit maps are
// returned as is; glob maps are served from the cache or, on a miss,
// expanded against the filesystem and written back.
func loadProjectsFromCache(
	ctx context.Context,
	workspaceRoot string,
	projects config.ProjectsSourceMap,
	engine cache.Engine,
	m *metrics.Collectors,
) (config.ProjectsSourceMap, error) {
	logger := ctxlog.FromContext(ctx)

	// Projects were mapped manually and are not using globs
	if !projects.UsesGlobs() {
		return projects.Clone(), nil
	}

	globs := projects.Globs()
	state, err := engine.LoadProjectsState(ctx, globs)
	if err != nil {
		return nil, err
	}

	if len(state.Projects) > 0 {
		logger.Debug("Loading projects from cache", "count", len(state.Projects))
		m.DiscoveryLookup(true)
		return state.Projects, nil
	}
	m.DiscoveryLookup(false)

	logger.Debug("Finding projects with globs", "globs", globs)
	found, err := detectProjectsWithGlobs(workspaceRoot, globs)
	if err != nil {
		return nil, err
	}

	state.Globs = globs
	state.Projects = found
	if err := engine.SaveProjectsState(ctx, state); err != nil {
		return nil, fmt.Errorf("saving projects state: %w", err)
	}
	return found, nil
}

// detectProjectsWithGlobs maps every directory matching one of the globs to
// a project whose ID is the directory name.
func detectProjectsWithGlobs(workspaceRoot string, globs []string) (config.ProjectsSourceMap, error) {
	matchers := make([]glob.Glob, 0, len(globs))
	for _, pattern := range globs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid project glob %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	dirs, err := fsutil.FindDirectories(workspaceRoot, func(rel string) bool {
		for _, g := range matchers {
			if g.Match(rel) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace for projects: %w", err)
	}

	found := make(config.ProjectsSourceMap, len(dirs))
	for _, dir := range dirs {
		id := path.Base(dir)
		if existing, dup := found[id]; dup {
			return nil, fmt.Errorf("project id %q is used by both %q and %q", id, existing, dir)
		}
		found[id] = dir
	}
	return found, nil
}
