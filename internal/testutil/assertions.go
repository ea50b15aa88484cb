package testutil

import (
	"testing"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/stretchr/testify/assert"
)

// Statuses maps each finished action's label to its status.
func Statuses(results []*action.Action) map[string]action.Status {
	out := make(map[string]action.Status, len(results))
	for _, a := range results {
		out[a.Label] = a.Status
	}
	return out
}

// AssertStatus checks the status of the action with the given label.
func AssertStatus(t *testing.T, results []*action.Action, label string, want action.Status) bool {
	t.Helper()
	got, ok := Statuses(results)[label]
	if !assert.True(t, ok, "no action labelled %s in results", label) {
		return false
	}
	return assert.Equal(t, want.String(), got.String(), "status of %s", label)
}
