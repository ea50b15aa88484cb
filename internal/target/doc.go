// internal/target/doc.go

/*
Package target provides the addressing scheme used by both graphs: a Target
names one task of one project in the canonical form `project:task`.

Besides fully qualified targets, a scope prefix may stand in for the
project ID:

	^:build   the `build` task of every project this project depends on
	~:build   the `build` task of the declaring project itself
	:build    the `build` task of every project in the workspace

Scoped targets are resolved against a concrete project by the action graph;
they never appear as node identities.
*/
package target
