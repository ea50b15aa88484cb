/*
Package projectgraph owns the workspace's project graph: a directed acyclic
graph whose nodes are projects and whose edges point from a dependent to its
dependency.

# Why the graph is lazy

A workspace may declare hundreds of projects while a single command touches
only a few. Projects are therefore materialized on first reference: Load
parses one project's configuration, inserts it, and recursively loads its
dependencies. LoadAll forces every known project in, which is required
before asking for dependents, since reverse edges only exist among loaded
nodes.

# The synthetic root

Index 0 always holds a synthetic root node with the reserved ID
`(workspace)`. Every loaded project has an edge from the root, so "all
loaded projects" is simply the root's neighbor list. The root never
appears in dependents.

# Locking

The node storage and the ID to index map are guarded by two independent
read/write locks. Reads of already loaded projects only take read locks.
The write path always locks the index before the graph, and the insert
re-checks "already present" after acquiring the write locks, so racing
first-time loads are harmless.

# Discovery

The ID to source map comes from the workspace config. When it is flagged as
glob based, the filesystem is globbed once and the result is cached keyed
by the glob list; a later run with the same globs skips the walk.
*/
package projectgraph
