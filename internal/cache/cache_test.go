package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected Mode
		read     bool
		write    bool
	}{
		{input: "", expected: ModeReadWrite, read: true, write: true},
		{input: "read", expected: ModeRead, read: true, write: false},
		{input: "write", expected: ModeWrite, read: false, write: true},
		{input: "off", expected: ModeOff, read: false, write: false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.expected), func(t *testing.T) {
			m, err := ParseMode(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m)
			assert.Equal(t, tc.read, m.CanRead())
			assert.Equal(t, tc.write, m.CanWrite())
		})
	}

	_, err := ParseMode("sometimes")
	require.Error(t, err)
}

func TestFileEngine_ProjectsState(t *testing.T) {
	ctx := context.Background()
	ws := t.TempDir()
	engine := NewFileEngine(ws, ModeReadWrite)
	globs := []string{"apps/*", "packages/*"}

	state, err := engine.LoadProjectsState(ctx, globs)
	require.NoError(t, err)
	assert.Empty(t, state.Projects, "a cold cache is a miss")

	state.Projects = config.ProjectsSourceMap{"a": "packages/a"}
	require.NoError(t, engine.SaveProjectsState(ctx, state))

	again, err := engine.LoadProjectsState(ctx, globs)
	require.NoError(t, err)
	assert.Equal(t, config.ProjectsSourceMap{"a": "packages/a"}, again.Projects)

	other, err := engine.LoadProjectsState(ctx, []string{"apps/*"})
	require.NoError(t, err)
	assert.Empty(t, other.Projects, "different globs use a different entry")
}

func TestFileEngine_ModeOff(t *testing.T) {
	ctx := context.Background()
	ws := t.TempDir()
	engine := NewFileEngine(ws, ModeOff)

	require.NoError(t, engine.SaveHash(ctx, "abcd", map[string]string{"k": "v"}))
	_, err := os.Stat(engine.Dir)
	assert.True(t, os.IsNotExist(err), "off mode never writes")

	exists, err := engine.HashExists(ctx, "abcd")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileEngine_RunTargetState(t *testing.T) {
	ctx := context.Background()
	engine := NewFileEngine(t.TempDir(), ModeReadWrite)
	tgt := target.MustParse("@acme/ui:build")

	require.NoError(t, engine.SaveRunTargetState(ctx, &RunTargetState{Target: tgt.String(), Hash: "h1", ExitCode: 0}))
	require.NoError(t, engine.SaveHash(ctx, "h1", map[string]string{"target": tgt.String()}))

	state, err := engine.LoadRunTargetState(ctx, tgt)
	require.NoError(t, err)
	assert.Equal(t, "h1", state.Hash)
	assert.Equal(t, filepath.Join(engine.Dir, "states", "acme-ui", "build"), engine.TargetDir(tgt))

	exists, err := engine.HashExists(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryEngine_ReadOnlyIgnoresWrites(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryEngine().WithMode(ModeRead)

	require.NoError(t, engine.SaveHash(ctx, "h", nil))
	exists, err := engine.HashExists(ctx, "h")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTargetHasher(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "a.txt"), []byte("one"), 0o644))

	build := func() string {
		h := NewTargetHasher("app:build")
		h.Command = "tsc"
		h.Env["NODE_ENV"] = "production"
		require.NoError(t, h.HashInputFiles(ws, []string{"a.txt"}))
		sum, err := h.Hash()
		require.NoError(t, err)
		return sum
	}

	first := build()
	assert.Equal(t, first, build(), "identical inputs produce identical hashes")

	require.NoError(t, os.WriteFile(filepath.Join(ws, "a.txt"), []byte("two"), 0o644))
	assert.NotEqual(t, first, build(), "changed content produces a new hash")
}

func TestFlight_SharesConcurrentClaims(t *testing.T) {
	var f Flight
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	var sharedCount atomic.Int32
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, shared, err := f.Do("h", func() (any, error) {
			calls.Add(1)
			close(started)
			<-release
			return "done", nil
		})
		assert.NoError(t, err)
		if shared {
			sharedCount.Add(1)
		}
	}()

	<-started
	go func() {
		defer wg.Done()
		res, shared, err := f.Do("h", func() (any, error) {
			calls.Add(1)
			return "second", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "done", res)
		if shared {
			sharedCount.Add(1)
		}
	}()

	// Give the second caller time to join the in-flight call.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(2), sharedCount.Load())
}
