// Package runner executes an action graph with bounded concurrency.
//
// A single coordinator goroutine owns all scheduling state. It keeps a
// ready queue of actions whose dependencies have all reached a terminal
// status, launches up to the configured number of them on worker
// goroutines, and reacts to each completion:
//
//   - Passed, Cached, Skipped and Invalid unblock dependents.
//   - Failed transitively skips every dependent; independent branches
//     keep running.
//   - FailedAndAbort stops new work from starting. Running actions finish,
//     actions that never started stay pending and are left out of the
//     results.
//
// Results are returned in completion order. Per-action work is delegated
// to an Executor registered for each node kind.
package runner
