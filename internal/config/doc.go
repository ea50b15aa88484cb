// Package config defines the format-agnostic configuration model for a
// workspace: the workspace file, the global project file inherited by every
// project, and per-project files with their task declarations.
//
// The model is the single source of truth for the `projectgraph` and
// `depgraph` packages. Concrete file formats are provided by separate
// packages implementing Loader, such as `hclconfig`.
//
// Validation that must happen before any graph is built also lives here:
// the reserved root identifier check and dependency cycle detection.
package config
