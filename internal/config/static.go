package config

import (
	"context"
	"fmt"
)

// StaticLoader serves configuration from memory. It is used by tests and by
// callers that build configuration programmatically.
type StaticLoader struct {
	Workspace *WorkspaceConfig
	Global    *GlobalProjectConfig
	// Projects is keyed by project ID.
	Projects map[string]*ProjectConfig
}

var _ Loader = (*StaticLoader)(nil)

// LoadWorkspace returns the static workspace config.
func (l *StaticLoader) LoadWorkspace(_ context.Context, root string) (*WorkspaceConfig, error) {
	if l.Workspace == nil {
		return nil, fmt.Errorf("no workspace config for %q", root)
	}
	return l.Workspace, nil
}

// LoadGlobalProject returns the static global config or an empty one.
func (l *StaticLoader) LoadGlobalProject(_ context.Context, _ string) (*GlobalProjectConfig, error) {
	if l.Global == nil {
		return &GlobalProjectConfig{}, nil
	}
	return l.Global, nil
}

// LoadProject returns the static project config or an empty one.
func (l *StaticLoader) LoadProject(_ context.Context, scope ProjectScope) (*ProjectConfig, error) {
	if cfg, ok := l.Projects[scope.ID]; ok && cfg != nil {
		return cfg, nil
	}
	return &ProjectConfig{}, nil
}
