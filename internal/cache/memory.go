package cache

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specialistvlad/monogrid/internal/target"
)

// MemoryEngine implements Engine in memory. Useful for tests.
type MemoryEngine struct {
	mu       sync.Mutex
	mode     Mode
	projects map[string]*ProjectsState
	runs     map[target.Target]*RunTargetState
	hashes   map[string]any

	// ProjectsLoads counts LoadProjectsState calls that hit a stored state.
	ProjectsLoads int
}

var _ Engine = (*MemoryEngine)(nil)

// NewMemoryEngine creates an empty read-write engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		mode:     ModeReadWrite,
		projects: make(map[string]*ProjectsState),
		runs:     make(map[target.Target]*RunTargetState),
		hashes:   make(map[string]any),
	}
}

// WithMode changes the engine mode and returns the engine.
func (e *MemoryEngine) WithMode(m Mode) *MemoryEngine {
	e.mode = m
	return e
}

func (e *MemoryEngine) Mode() Mode { return e.mode }

func globsKey(globs []string) string { return strings.Join(globs, "\n") }

func (e *MemoryEngine) LoadProjectsState(_ context.Context, globs []string) (*ProjectsState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stored, ok := e.projects[globsKey(globs)]; ok && e.mode.CanRead() {
		e.ProjectsLoads++
		return &ProjectsState{Globs: globs, Projects: stored.Projects.Clone()}, nil
	}
	return &ProjectsState{Globs: globs}, nil
}

func (e *MemoryEngine) SaveProjectsState(_ context.Context, state *ProjectsState) error {
	if !e.mode.CanWrite() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.projects[globsKey(state.Globs)] = &ProjectsState{Globs: state.Globs, Projects: state.Projects.Clone()}
	return nil
}

func (e *MemoryEngine) LoadRunTargetState(_ context.Context, t target.Target) (*RunTargetState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.runs[t]; ok && e.mode.CanRead() {
		c := *s
		return &c, nil
	}
	return &RunTargetState{Target: t.String()}, nil
}

func (e *MemoryEngine) SaveRunTargetState(_ context.Context, state *RunTargetState) error {
	if !e.mode.CanWrite() {
		return nil
	}
	t, err := target.Parse(state.Target)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c := *state
	e.runs[t] = &c
	return nil
}

func (e *MemoryEngine) HashExists(_ context.Context, hash string) (bool, error) {
	if !e.mode.CanRead() {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.hashes[hash]
	return ok, nil
}

func (e *MemoryEngine) SaveHash(_ context.Context, hash string, manifest any) error {
	if !e.mode.CanWrite() {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hashes[hash] = manifest
	return nil
}

func (e *MemoryEngine) TargetDir(t target.Target) string {
	return filepath.Join(".monogrid", "cache", "states", safeName(t.ProjectID), safeName(t.TaskID))
}
