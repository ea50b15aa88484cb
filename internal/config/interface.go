package config

import "context"

// ProjectScope identifies a single project on disk while its configuration
// is being loaded.
type ProjectScope struct {
	ID            string
	Source        string // relative to WorkspaceRoot, slash separated
	Root          string // absolute
	WorkspaceRoot string
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadWorkspace reads the workspace configuration found under root.
	LoadWorkspace(ctx context.Context, root string) (*WorkspaceConfig, error)
	// LoadGlobalProject reads the configuration inherited by every project.
	// A workspace without one yields an empty config, not an error.
	LoadGlobalProject(ctx context.Context, workspaceRoot string) (*GlobalProjectConfig, error)
	// LoadProject reads the configuration of a single project. A project
	// without a config file yields an empty config, not an error.
	LoadProject(ctx context.Context, scope ProjectScope) (*ProjectConfig, error)
}
