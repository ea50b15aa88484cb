package runner

import (
	"context"

	"github.com/specialistvlad/monogrid/internal/action"
)

// Executor performs the work of one action and returns its status. A
// returned error is recorded on the action.
type Executor interface {
	Execute(ctx context.Context, a *action.Action, actx *action.Context) (action.Status, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, a *action.Action, actx *action.Context) (action.Status, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, a *action.Action, actx *action.Context) (action.Status, error) {
	return f(ctx, a, actx)
}
