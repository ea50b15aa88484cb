// Package actions implements the executors the runner dispatches to, one
// per action node kind:
//
//   - SetupToolchain prepares the workspace cache directory.
//   - InstallDeps runs the workspace install command when its inputs changed.
//   - SyncProject keeps a project's package.json in step with its declared
//     project dependencies.
//   - RunTarget fingerprints a task and either reuses a cached result or
//     runs the task's command as a child process.
//
// Executors share a Workspace, which carries the project graph, the cache
// engine and the workspace lock. Options wires all of them into a runner.
package actions
