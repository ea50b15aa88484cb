// Package action defines the unit of work scheduled by the runner: the
// Action record, its terminal Status, the Node identity it executes, and
// the read-mostly Context shared by every executor during one run.
package action
