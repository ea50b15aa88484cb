// Package hclconfig loads workspace and project configuration from HCL
// files.
//
// The workspace lives in `.monogrid/workspace.hcl`, configuration inherited
// by every project in `.monogrid/project.hcl`, and each project may carry
// its own `project.hcl`. Attribute values are evaluated against a context
// exposing `workspace.root` and, in project files, `project.id`,
// `project.root` and `project.source`.
package hclconfig
