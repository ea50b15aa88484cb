// internal/target/target.go
package target

import (
	"sort"
	"strings"
)

// String serializes the Target into its canonical `project:task` form.
func (t Target) String() string {
	var sb strings.Builder
	switch t.Scope {
	case ScopeDeps:
		sb.WriteString(depsPrefix)
	case ScopeOwnSelf:
		sb.WriteString(ownSelfPrefix)
	case ScopeAll:
	default:
		sb.WriteString(t.ProjectID)
	}
	sb.WriteString(Separator)
	sb.WriteString(t.TaskID)
	return sb.String()
}

// Equal reports whether both components of the targets match.
func (t Target) Equal(other Target) bool {
	return t == other
}

// IsScoped is true for targets that still need a concrete project.
func (t Target) IsScoped() bool {
	return t.Scope != ScopeProject
}

// WithProject resolves a scoped target against a concrete project ID.
func (t Target) WithProject(projectID string) Target {
	return Target{Scope: ScopeProject, ProjectID: projectID, TaskID: t.TaskID}
}

// Sort orders targets by their canonical string form, in place.
func Sort(targets []Target) {
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].String() < targets[j].String()
	})
}

// Strings renders each target in canonical form.
func Strings(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.String()
	}
	return out
}

// MarshalText encodes the target in canonical form for JSON and map keys.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a canonical target.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
