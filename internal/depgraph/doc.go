// Package depgraph builds the action graph: a DAG of actions derived from
// requested run targets, their dependencies and optionally their dependents.
//
// Every graph starts with a SetupToolchain node at index 0. A RunTarget
// node depends on InstallDeps and on SyncProject of its owning project; a
// SyncProject node depends on SetupToolchain and on the SyncProject nodes of
// the project's dependencies. Task dependencies add RunTarget to RunTarget
// edges. An edge always points from an action to an action that must run
// before it.
//
// Insertion is idempotent: asking for the same node twice returns the
// existing index. RunTarget builds the minimal affected subgraph used for
// local development; RunTargetDependents additionally pulls in consumers of
// a target's project, which CI uses to re-validate them.
package depgraph
