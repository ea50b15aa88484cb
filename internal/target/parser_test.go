// internal/target/parser_test.go
package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  Target
		expectErr bool
	}{
		{
			name:     "fully qualified",
			input:    "app:build",
			expected: Target{Scope: ScopeProject, ProjectID: "app", TaskID: "build"},
		},
		{
			name:     "scoped package project id",
			input:    "@acme/ui:test",
			expected: Target{Scope: ScopeProject, ProjectID: "@acme/ui", TaskID: "test"},
		},
		{
			name:     "deps scope",
			input:    "^:build",
			expected: Target{Scope: ScopeDeps, TaskID: "build"},
		},
		{
			name:     "own scope",
			input:    "~:lint",
			expected: Target{Scope: ScopeOwnSelf, TaskID: "lint"},
		},
		{name: "empty", input: "", expectErr: true},
		{name: "missing separator", input: "app", expectErr: true},
		{name: "empty task", input: "app:", expectErr: true},
		{
			name:     "all projects scope",
			input:    ":lint",
			expected: Target{Scope: ScopeAll, TaskID: "lint"},
		},
		{name: "double separator", input: "a:b:c", expectErr: true},
		{name: "parent dir project", input: "..:build", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a:build", "^:build", "~:test", ":lint", "web-app:e2e.ci"} {
		t.Run(raw, func(t *testing.T) {
			parsed, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, parsed.String())

			again, err := Parse(parsed.String())
			require.NoError(t, err)
			assert.True(t, parsed.Equal(again))
		})
	}
}

func TestParseAll_StopsAtFirstError(t *testing.T) {
	_, err := ParseAll([]string{"a:build", "nope"})
	require.ErrorIs(t, err, ErrInvalidFormat)
}
