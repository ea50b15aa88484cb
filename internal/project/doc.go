// Package project holds the Project and Task entities that make up the
// nodes of the project graph.
//
// A Project is built once from its configuration and is treated as
// immutable afterwards; callers receive clones. Tasks answer the one
// question the orchestrator needs from them: are they affected by a given
// set of touched files.
//
// Input patterns follow two conventions:
//
//	src/**/*.go   relative to the project root
//	/tsconfig.json  relative to the workspace root
//	@sources      expands to the project's `sources` file group
package project
