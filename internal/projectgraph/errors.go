package projectgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnconfiguredID matches every UnconfiguredIDError.
	ErrUnconfiguredID = errors.New("unconfigured project id")
	// ErrNotLoaded is returned when querying edges of a project that has
	// not been loaded into the graph.
	ErrNotLoaded = errors.New("project not loaded")
)

// UnconfiguredIDError reports a project ID missing from the discovery map.
type UnconfiguredIDError struct {
	ID string
}

func (e *UnconfiguredIDError) Error() string {
	return fmt.Sprintf("no project has been configured with the ID %q", e.ID)
}

// Is lets errors.Is match ErrUnconfiguredID.
func (e *UnconfiguredIDError) Is(target error) bool {
	return target == ErrUnconfiguredID
}
