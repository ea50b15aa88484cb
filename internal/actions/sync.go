package actions

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/specialistvlad/monogrid/internal/project"
)

// SyncProject keeps a node project's manifests in step with its declared
// dependencies: each dependency's package name is added to package.json,
// and each dependency with a tsconfig.json becomes a project reference.
// The project itself is referenced from the workspace root tsconfig.json.
// It reports Skipped when nothing changed, Passed when files were written,
// and Invalid when they were written during a CI run.
type SyncProject struct {
	ws *Workspace
}

// syncPlan is what the read phase found to add.
type syncPlan struct {
	packages   []string
	references []string
	// rootReference is the project's source when the project has a
	// tsconfig.json, empty otherwise.
	rootReference string
}

func (s *SyncProject) Execute(ctx context.Context, a *action.Action, _ *action.Context) (action.Status, error) {
	logger := ctxlog.FromContext(ctx).With("project", a.Node.ProjectID)

	p, err := s.ws.Projects.Load(ctx, a.Node.ProjectID)
	if err != nil {
		return action.StatusFailed, err
	}
	if !p.Language.IsNodeBased() {
		return action.StatusSkipped, nil
	}

	s.ws.mu.RLock()
	plan, err := s.plan(ctx, p)
	s.ws.mu.RUnlock()
	if err != nil {
		return action.StatusFailed, err
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	mutated := false
	steps := []func(*project.Project, syncPlan, *slog.Logger) (bool, error){
		syncPackageJSON,
		syncTsconfigReferences,
		s.syncRootTsconfig,
	}
	for _, step := range steps {
		changed, err := step(p, plan, logger)
		if err != nil {
			return action.StatusFailed, err
		}
		mutated = mutated || changed
	}
	if !mutated {
		return action.StatusSkipped, nil
	}

	if s.ws.CI {
		logger.Warn("Project files were modified during a CI run; commit the synced files")
		return action.StatusInvalid, nil
	}
	return action.StatusPassed, nil
}

// plan collects the package names and tsconfig references of every
// dependency. Callers hold the workspace read lock.
func (s *SyncProject) plan(ctx context.Context, p *project.Project) (syncPlan, error) {
	var plan syncPlan
	depIDs, err := s.ws.Projects.DependenciesOf(p.ID)
	if err != nil {
		return plan, err
	}
	for _, depID := range depIDs {
		dep, err := s.ws.Projects.Load(ctx, depID)
		if err != nil {
			return plan, err
		}
		depPkg, found, err := readPackageJSON(filepath.Join(dep.Root, "package.json"))
		if err != nil {
			return plan, err
		}
		// Only add if the dependency project has a package.json.
		if found && depPkg.Name != "" {
			plan.packages = append(plan.packages, depPkg.Name)
		}
		if fileExists(filepath.Join(dep.Root, tsconfigFileName)) {
			rel, err := filepath.Rel(p.Root, dep.Root)
			if err != nil {
				return plan, err
			}
			plan.references = append(plan.references, filepath.ToSlash(rel))
		}
	}
	if fileExists(filepath.Join(p.Root, tsconfigFileName)) {
		plan.rootReference = p.Source
	}
	return plan, nil
}

func syncPackageJSON(p *project.Project, plan syncPlan, logger *slog.Logger) (bool, error) {
	if len(plan.packages) == 0 {
		return false, nil
	}
	pkg, found, err := readPackageJSON(filepath.Join(p.Root, "package.json"))
	if err != nil || !found {
		return false, err
	}

	mutated := false
	for _, name := range plan.packages {
		if pkg.addDependency(name, workspaceDependencyRange) {
			logger.Debug("Syncing dependency to package.json", "dependency", name)
			mutated = true
		}
	}
	if !mutated {
		return false, nil
	}
	if err := pkg.save(); err != nil {
		return false, fmt.Errorf("writing %s: %w", pkg.path, err)
	}
	return true, nil
}

func syncTsconfigReferences(p *project.Project, plan syncPlan, logger *slog.Logger) (bool, error) {
	if len(plan.references) == 0 {
		return false, nil
	}
	cfg, found, err := readTsconfigJSON(filepath.Join(p.Root, tsconfigFileName))
	if err != nil || !found {
		return false, err
	}

	mutated := false
	for _, ref := range plan.references {
		if cfg.addReference(ref) {
			logger.Debug("Syncing project reference to tsconfig.json", "reference", ref)
			mutated = true
		}
	}
	if !mutated {
		return false, nil
	}
	if err := cfg.save(); err != nil {
		return false, fmt.Errorf("writing %s: %w", cfg.path, err)
	}
	return true, nil
}

// syncRootTsconfig references the project from the workspace root
// tsconfig.json, when both files exist.
func (s *SyncProject) syncRootTsconfig(p *project.Project, plan syncPlan, logger *slog.Logger) (bool, error) {
	if plan.rootReference == "" {
		return false, nil
	}
	cfg, found, err := readTsconfigJSON(filepath.Join(s.ws.Root, tsconfigFileName))
	if err != nil || !found {
		return false, err
	}
	if !cfg.addReference(plan.rootReference) {
		return false, nil
	}
	logger.Debug("Syncing project reference to the root tsconfig.json")
	if err := cfg.save(); err != nil {
		return false, fmt.Errorf("writing %s: %w", cfg.path, err)
	}
	return true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
