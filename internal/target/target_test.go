// internal/target/target_test.go
package target

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTarget_Equal(t *testing.T) {
	a := MustParse("a:build")

	assert.True(t, a.Equal(MustParse("a:build")))
	assert.False(t, a.Equal(MustParse("a:test")))
	assert.False(t, a.Equal(MustParse("b:build")))
	assert.False(t, MustParse("^:build").Equal(MustParse("~:build")))
}

func TestTarget_WithProject(t *testing.T) {
	scoped := MustParse("^:build")
	assert.True(t, scoped.IsScoped())

	resolved := scoped.WithProject("lib")
	assert.False(t, resolved.IsScoped())
	assert.Equal(t, "lib:build", resolved.String())
}

func TestSort(t *testing.T) {
	targets := []Target{MustParse("b:test"), MustParse("a:test"), MustParse("a:build")}
	Sort(targets)

	want := []string{"a:build", "a:test", "b:test"}
	if diff := cmp.Diff(want, Strings(targets)); diff != "" {
		t.Errorf("sorted targets mismatch (-want +got):\n%s", diff)
	}
}
