package report

import "github.com/fatih/color"

// Sprint color functions for building styled strings.
var (
	bold    = color.New(color.Bold).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
	invalid = color.New(color.FgYellow).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
)
