package action

// Status is the outcome of an action. Every status except Pending is
// terminal and assigned at most once per run.
type Status int

const (
	// StatusPending means the action has not reached a terminal status.
	StatusPending Status = iota
	// StatusPassed means the action ran and succeeded.
	StatusPassed
	// StatusCached means a prior equivalent result was reused.
	StatusCached
	// StatusSkipped means the action did not need to run.
	StatusSkipped
	// StatusInvalid means the action mutated the workspace where that is
	// not allowed. It is a warning, not a failure.
	StatusInvalid
	// StatusFailed is a local failure; only dependents are skipped.
	StatusFailed
	// StatusFailedAndAbort is a failure that aborts the whole run.
	StatusFailedAndAbort
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPassed:
		return "passed"
	case StatusCached:
		return "cached"
	case StatusSkipped:
		return "skipped"
	case StatusInvalid:
		return "invalid"
	case StatusFailed:
		return "failed"
	case StatusFailedAndAbort:
		return "failed-and-abort"
	}
	return "unknown"
}

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// IsFailure is true for Failed and FailedAndAbort.
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusFailedAndAbort
}

// UnblocksDependents reports whether dependents may run after this status.
func (s Status) UnblocksDependents() bool {
	switch s {
	case StatusPassed, StatusCached, StatusSkipped, StatusInvalid:
		return true
	}
	return false
}
