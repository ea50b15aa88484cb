package action

import (
	"time"
)

// Action is the result record of one node in a run.
type Action struct {
	Node      Node
	Label     string
	Status    Status
	Error     error
	StartTime time.Time
	Duration  time.Duration
	// Output is the captured process output, if any.
	Output string
}

// New creates a pending action for a node.
func New(n Node) *Action {
	return &Action{Node: n, Label: n.Label(), Status: StatusPending}
}

// Start records the start time.
func (a *Action) Start() {
	a.StartTime = time.Now()
}

// Finish assigns the terminal status and elapsed duration.
func (a *Action) Finish(status Status, err error) {
	a.Status = status
	a.Error = err
	if !a.StartTime.IsZero() {
		a.Duration = time.Since(a.StartTime)
	}
}
