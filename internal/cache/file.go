package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/target"
)

// DirName is the cache directory, relative to the workspace root.
const DirName = ".monogrid/cache"

// FileEngine implements Engine on the filesystem.
//
// Structure:
//
//	{Dir}/
//	  hashes/{hash[0:2]}/{hash}.json
//	  states/projects-{globsHash}.json
//	  states/{project}/{task}/lastRun.json
type FileEngine struct {
	Dir  string
	mode Mode
}

var _ Engine = (*FileEngine)(nil)

// NewFileEngine creates an engine rooted in the workspace cache directory.
func NewFileEngine(workspaceRoot string, mode Mode) *FileEngine {
	return &FileEngine{Dir: filepath.Join(workspaceRoot, filepath.FromSlash(DirName)), mode: mode}
}

// Mode returns the engine's read/write mode.
func (e *FileEngine) Mode() Mode { return e.mode }

func (e *FileEngine) statesDir() string { return filepath.Join(e.Dir, "states") }

func (e *FileEngine) projectsStatePath(globs []string) string {
	sum := sha256.Sum256([]byte(strings.Join(globs, "\n")))
	return filepath.Join(e.statesDir(), "projects-"+hex.EncodeToString(sum[:8])+".json")
}

// LoadProjectsState reads the discovery map cached for globs.
func (e *FileEngine) LoadProjectsState(ctx context.Context, globs []string) (*ProjectsState, error) {
	state := &ProjectsState{Globs: globs}
	if !e.mode.CanRead() {
		return state, nil
	}
	found, err := readJSON(e.projectsStatePath(globs), state)
	if err != nil {
		return nil, err
	}
	if found {
		ctxlog.FromContext(ctx).Debug("Loaded projects state from cache", "projects", len(state.Projects))
	}
	return state, nil
}

// SaveProjectsState persists the discovery map for its globs.
func (e *FileEngine) SaveProjectsState(_ context.Context, state *ProjectsState) error {
	if !e.mode.CanWrite() {
		return nil
	}
	return writeJSON(e.projectsStatePath(state.Globs), state)
}

// TargetDir returns the per-target state directory.
func (e *FileEngine) TargetDir(t target.Target) string {
	return filepath.Join(e.statesDir(), safeName(t.ProjectID), safeName(t.TaskID))
}

// safeName flattens IDs such as `@scope/pkg` into a single path element.
func safeName(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-", "@", "").Replace(s)
}

// LoadRunTargetState reads the last run of a target.
func (e *FileEngine) LoadRunTargetState(_ context.Context, t target.Target) (*RunTargetState, error) {
	state := &RunTargetState{Target: t.String()}
	if !e.mode.CanRead() {
		return state, nil
	}
	if _, err := readJSON(filepath.Join(e.TargetDir(t), "lastRun.json"), state); err != nil {
		return nil, err
	}
	return state, nil
}

// SaveRunTargetState records the last run of a target.
func (e *FileEngine) SaveRunTargetState(_ context.Context, state *RunTargetState) error {
	if !e.mode.CanWrite() {
		return nil
	}
	t, err := target.Parse(state.Target)
	if err != nil {
		return err
	}
	return writeJSON(filepath.Join(e.TargetDir(t), "lastRun.json"), state)
}

func (e *FileEngine) hashPath(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(e.Dir, "hashes", hash+".json")
	}
	return filepath.Join(e.Dir, "hashes", hash[:2], hash+".json")
}

// HashExists checks whether a manifest was recorded for the fingerprint.
func (e *FileEngine) HashExists(_ context.Context, hash string) (bool, error) {
	if !e.mode.CanRead() {
		return false, nil
	}
	_, err := os.Stat(e.hashPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking cache hash: %w", err)
	}
	return true, nil
}

// SaveHash records the manifest for a fingerprint.
func (e *FileEngine) SaveHash(_ context.Context, hash string, manifest any) error {
	if !e.mode.CanWrite() {
		return nil
	}
	return writeJSON(e.hashPath(hash), manifest)
}

func readJSON(path string, into any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading cache file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("parsing cache file %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return writeFileAtomic(path, data, 0o644)
}

// writeFileAtomic writes into a temp file and renames it into place so a
// crash never leaves a partial state file behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
