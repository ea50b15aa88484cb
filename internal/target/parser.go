// internal/target/parser.go
package target

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	projectIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_@][a-zA-Z0-9_.\-/@]*$`)
	taskIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.\-]*$`)
)

// isValidProjectID rejects path-like names that would escape a directory.
func isValidProjectID(id string) bool {
	if id == "." || id == ".." || strings.Contains(id, "..") {
		return false
	}
	return projectIDRegex.MatchString(id)
}

// ValidateProjectID reports whether id may be used as a project identifier.
func ValidateProjectID(id string) error {
	if !isValidProjectID(id) {
		return fmt.Errorf("%w: invalid project id %q", ErrInvalidFormat, id)
	}
	return nil
}

// New builds a fully qualified target, validating both halves.
func New(projectID, taskID string) (Target, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return Target{}, err
	}
	if !taskIDRegex.MatchString(taskID) {
		return Target{}, fmt.Errorf("%w: invalid task id %q", ErrInvalidFormat, taskID)
	}
	return Target{Scope: ScopeProject, ProjectID: projectID, TaskID: taskID}, nil
}

// Parse creates a Target by parsing its canonical string representation.
// Scoped forms (`^:task`, `~:task`, `:task`) are accepted.
func Parse(raw string) (Target, error) {
	if raw == "" {
		return Target{}, fmt.Errorf("%w: target cannot be empty", ErrInvalidFormat)
	}

	projectPart, taskPart, found := strings.Cut(raw, Separator)
	if !found {
		return Target{}, fmt.Errorf("%w: %q is missing %q separator", ErrInvalidFormat, raw, Separator)
	}
	if strings.Contains(taskPart, Separator) {
		return Target{}, fmt.Errorf("%w: %q contains more than one separator", ErrInvalidFormat, raw)
	}
	if !taskIDRegex.MatchString(taskPart) {
		return Target{}, fmt.Errorf("%w: invalid task id %q", ErrInvalidFormat, taskPart)
	}

	switch projectPart {
	case depsPrefix:
		return Target{Scope: ScopeDeps, TaskID: taskPart}, nil
	case ownSelfPrefix:
		return Target{Scope: ScopeOwnSelf, TaskID: taskPart}, nil
	case "":
		return Target{Scope: ScopeAll, TaskID: taskPart}, nil
	}
	return New(projectPart, taskPart)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) Target {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAll parses a list of targets, stopping at the first failure.
func ParseAll(raws []string) ([]Target, error) {
	targets := make([]Target, 0, len(raws))
	for _, raw := range raws {
		t, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
