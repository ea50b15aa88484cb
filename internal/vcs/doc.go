// Package vcs lists the files touched in a workspace, either locally or
// between two revisions.
package vcs
