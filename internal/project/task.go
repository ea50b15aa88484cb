package project

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/target"
)

// defaultInputs is used when a task declares no inputs at all: the whole
// project directory.
var defaultInputs = []string{"."}

// TaskOptions are the resolved task switches.
type TaskOptions struct {
	RunInCI              bool `json:"runInCI"`
	Cache                bool `json:"cache"`
	RunFromWorkspaceRoot bool `json:"runFromWorkspaceRoot"`
}

// Task is a named, runnable unit of work belonging to a project.
type Task struct {
	ID      string            `json:"id"`
	Target  target.Target     `json:"target"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Inputs  []string          `json:"inputs,omitempty"`
	Outputs []string          `json:"outputs,omitempty"`
	Deps    []target.Target   `json:"deps,omitempty"`
	Options TaskOptions       `json:"options"`

	// InputPaths and InputGlobs are Inputs resolved to workspace-relative,
	// slash separated form.
	InputPaths []string `json:"inputPaths,omitempty"`
	InputGlobs []string `json:"inputGlobs,omitempty"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func newTask(projectID, source, id string, cfg *config.TaskConfig, fileGroups map[string][]string, implicitInputs []string) (*Task, error) {
	t, err := target.New(projectID, id)
	if err != nil {
		return nil, err
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("task %s has no command", t)
	}

	deps, err := target.ParseAll(cfg.Deps)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t, err)
	}
	for _, dep := range deps {
		if dep.Scope == target.ScopeOwnSelf && dep.TaskID == id {
			return nil, fmt.Errorf("task %s cannot depend on itself", t)
		}
		if dep.Scope == target.ScopeProject && dep.Equal(t) {
			return nil, fmt.Errorf("task %s cannot depend on itself", t)
		}
	}

	inputs := cfg.Inputs
	if len(inputs) == 0 {
		inputs = defaultInputs
	}
	inputs = append(append([]string{}, inputs...), implicitInputs...)

	task := &Task{
		ID:      id,
		Target:  t,
		Command: cfg.Command,
		Args:    append([]string(nil), cfg.Args...),
		Env:     copyEnv(cfg.Env),
		Inputs:  inputs,
		Outputs: append([]string(nil), cfg.Outputs...),
		Deps:    deps,
		Options: TaskOptions{
			RunInCI:              boolOr(cfg.Options.RunInCI, true),
			Cache:                boolOr(cfg.Options.Cache, true),
			RunFromWorkspaceRoot: boolOr(cfg.Options.RunFromWorkspaceRoot, false),
		},
	}

	if err := task.resolveInputs(source, fileGroups); err != nil {
		return nil, err
	}
	return task, nil
}

func copyEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// isGlob reports whether a pattern contains glob meta characters.
func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// resolveInputs converts declared inputs into workspace-relative paths and globs.
func (t *Task) resolveInputs(source string, fileGroups map[string][]string) error {
	var expanded []string
	for _, input := range t.Inputs {
		if name, ok := strings.CutPrefix(input, "@"); ok {
			group, found := fileGroups[name]
			if !found {
				return fmt.Errorf("task %s references unknown file group %q", t.Target, name)
			}
			expanded = append(expanded, group...)
			continue
		}
		expanded = append(expanded, input)
	}

	paths := make(map[string]struct{})
	globs := make(map[string]struct{})
	for _, input := range expanded {
		var rel string
		if ws, ok := strings.CutPrefix(input, "/"); ok {
			rel = path.Clean(ws)
		} else {
			rel = path.Clean(path.Join(source, input))
		}
		if strings.HasPrefix(rel, "../") || rel == ".." {
			return fmt.Errorf("task %s input %q escapes the workspace", t.Target, input)
		}
		if isGlob(rel) {
			for _, variant := range globVariants(rel) {
				if _, err := glob.Compile(variant, '/'); err != nil {
					return fmt.Errorf("task %s has invalid input glob %q: %w", t.Target, input, err)
				}
				globs[variant] = struct{}{}
			}
		} else {
			paths[rel] = struct{}{}
		}
	}

	t.InputPaths = sortedKeys(paths)
	t.InputGlobs = sortedKeys(globs)
	return nil
}

// globVariants lets `**/` also match zero directories, so `src/**/*.ts`
// matches `src/index.ts`.
func globVariants(pattern string) []string {
	variants := []string{pattern}
	collapsed := strings.ReplaceAll(pattern, "/**/", "/")
	if rest, ok := strings.CutPrefix(collapsed, "**/"); ok {
		collapsed = rest
	}
	if collapsed != pattern {
		variants = append(variants, collapsed)
	}
	return variants
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ShouldRunInCI reports whether the task is eligible for CI runs.
func (t *Task) ShouldRunInCI() bool {
	return t.Options.RunInCI
}

func (t *Task) compileGlobs() ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(t.InputGlobs))
	for _, pattern := range t.InputGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// IsAffected reports whether any touched file matches the task inputs.
func (t *Task) IsAffected(workspaceRoot string, touched TouchedFilePaths) (bool, error) {
	if len(touched) == 0 {
		return false, nil
	}
	globs, err := t.compileGlobs()
	if err != nil {
		return false, fmt.Errorf("task %s: %w", t.Target, err)
	}

	for abs := range touched {
		rel, err := filepath.Rel(workspaceRoot, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		for _, p := range t.InputPaths {
			if p == "." || rel == p || strings.HasPrefix(rel, p+"/") {
				return true, nil
			}
		}
		for _, g := range globs {
			if g.Match(rel) {
				return true, nil
			}
		}
	}
	return false, nil
}

// ExpandInputFiles lists the existing files matched by the task inputs as
// sorted workspace-relative slash paths.
func (t *Task) ExpandInputFiles(workspaceRoot string) ([]string, error) {
	files := make(map[string]struct{})

	for _, p := range t.InputPaths {
		if err := collectFiles(workspaceRoot, p, nil, files); err != nil {
			return nil, err
		}
	}

	globs, err := t.compileGlobs()
	if err != nil {
		return nil, err
	}
	for i, g := range globs {
		base := staticPrefix(t.InputGlobs[i])
		if err := collectFiles(workspaceRoot, base, g, files); err != nil {
			return nil, err
		}
	}
	return sortedKeys(files), nil
}

// staticPrefix returns the leading directory of a glob that has no meta characters.
func staticPrefix(pattern string) string {
	var parts []string
	for _, seg := range strings.Split(pattern, "/") {
		if isGlob(seg) {
			break
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

func collectFiles(workspaceRoot, rel string, match glob.Glob, into map[string]struct{}) error {
	start := filepath.Join(workspaceRoot, filepath.FromSlash(rel))
	if _, err := os.Stat(start); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) && p != start {
				return filepath.SkipDir
			}
			return nil
		}
		r, err := filepath.Rel(workspaceRoot, p)
		if err != nil {
			return err
		}
		r = filepath.ToSlash(r)
		if match == nil || match.Match(r) {
			into[r] = struct{}{}
		}
		return nil
	})
}

// skipDir excludes VCS metadata, installed dependencies and the tool's own state.
func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", ".monogrid":
		return true
	}
	return false
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Args = slices.Clone(t.Args)
	c.Env = copyEnv(t.Env)
	c.Inputs = slices.Clone(t.Inputs)
	c.Outputs = slices.Clone(t.Outputs)
	c.Deps = slices.Clone(t.Deps)
	c.InputPaths = slices.Clone(t.InputPaths)
	c.InputGlobs = slices.Clone(t.InputGlobs)
	return &c
}

// ExpandWorkspaceInputs resolves input patterns relative to the workspace
// root and lists the matching files.
func ExpandWorkspaceInputs(workspaceRoot string, inputs []string) ([]string, error) {
	t := &Task{Inputs: inputs}
	if err := t.resolveInputs(".", nil); err != nil {
		return nil, err
	}
	return t.ExpandInputFiles(workspaceRoot)
}
