package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrReservedID is returned when a project uses the root node identity.
	ErrReservedID = errors.New("project id is reserved")
	// ErrDependencyCycle is returned when project dependencies form a cycle.
	ErrDependencyCycle = errors.New("project dependency cycle")
)

// ValidateWorkspace checks the workspace file before any graph is created.
func ValidateWorkspace(cfg *WorkspaceConfig) error {
	if cfg == nil {
		return errors.New("workspace config is nil")
	}
	if len(cfg.Projects) == 0 {
		return errors.New("workspace config declares no projects")
	}
	for id, source := range cfg.Projects {
		if id == RootNodeID {
			return fmt.Errorf("%w: %q", ErrReservedID, id)
		}
		if id == FlagProjectsUsingGlob {
			continue
		}
		if source == "" {
			return fmt.Errorf("project %q has an empty source path", id)
		}
	}
	if cfg.Runner.Concurrency < 0 {
		return fmt.Errorf("runner concurrency must not be negative, got %d", cfg.Runner.Concurrency)
	}
	return nil
}

// DetectDependencyCycles performs a depth-first search over the declared
// project dependencies and reports the first cycle found. Dependencies on
// IDs absent from deps are ignored here; they fail later as unconfigured.
func DetectDependencyCycles(deps map[string][]string) error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		visiting[id] = true
		path = append(path, id)

		for _, dep := range deps[id] {
			if dep == id {
				return fmt.Errorf("%w: project %q depends on itself", ErrDependencyCycle, id)
			}
			if visiting[dep] {
				return fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, strings.Join(cycleFrom(path, dep), " -> "), dep)
			}
			if visited[dep] {
				continue
			}
			if _, known := deps[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		visiting[id] = false
		visited[id] = true
		return nil
	}

	// Iterate in a stable order so the reported cycle is deterministic.
	ids := make([]string, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if visited[id] {
			continue
		}
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func cycleFrom(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return path[i:]
		}
	}
	return path
}
