// internal/target/types.go
package target

import "errors"

// ErrInvalidFormat is wrapped by every parse failure.
var ErrInvalidFormat = errors.New("invalid target format")

// Scope describes how the project half of a target is addressed.
type Scope int

const (
	// ScopeProject is an explicit project ID, e.g. `app:build`.
	ScopeProject Scope = iota
	// ScopeDeps expands to every dependency project, e.g. `^:build`.
	ScopeDeps
	// ScopeOwnSelf refers to the declaring project, e.g. `~:build`.
	ScopeOwnSelf
	// ScopeAll expands to every project in the workspace, e.g. `:lint`.
	ScopeAll
)

const (
	// Separator divides the project and task halves of a target.
	Separator = ":"

	depsPrefix    = "^"
	ownSelfPrefix = "~"
)

// Target is the structured representation of a `project:task` identifier.
type Target struct {
	Scope     Scope
	ProjectID string
	TaskID    string
}
