package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".monogrid"), 0o755))
	nested := filepath.Join(root, "packages", "a", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindUp(nested, ".monogrid")
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindUp(nested, ".definitely-not-here-marker")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"packages/a", "packages/b/src", "packages/.hidden", "node_modules/x", "apps/web"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755))
	}

	dirs, err := FindDirectories(root, func(rel string) bool {
		return strings.HasPrefix(rel, "packages/") && strings.Count(rel, "/") == 1
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"packages/a", "packages/b"}, dirs)
}
