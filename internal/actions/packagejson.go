package actions

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

const workspaceDependencyRange = "workspace:*"

// packageJSON is a package.json file. Fields the sync does not manage are
// kept verbatim in raw; top level keys are written back in sorted order.
type packageJSON struct {
	path string
	raw  map[string]json.RawMessage

	Name             string
	Dependencies     map[string]string
	DevDependencies  map[string]string
	PeerDependencies map[string]string
}

// readPackageJSON loads a package.json. A missing file yields found=false.
func readPackageJSON(path string) (pkg *packageJSON, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	pkg = &packageJSON{path: path}
	if err := json.Unmarshal(data, &pkg.raw); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	fields := []struct {
		key  string
		into any
	}{
		{"name", &pkg.Name},
		{"dependencies", &pkg.Dependencies},
		{"devDependencies", &pkg.DevDependencies},
		{"peerDependencies", &pkg.PeerDependencies},
	}
	for _, f := range fields {
		if raw, ok := pkg.raw[f.key]; ok {
			if err := json.Unmarshal(raw, f.into); err != nil {
				return nil, false, fmt.Errorf("parsing %q in %s: %w", f.key, path, err)
			}
		}
	}
	return pkg, true, nil
}

// hasDependency reports whether name is declared in any dependency map.
func (p *packageJSON) hasDependency(name string) bool {
	for _, deps := range []map[string]string{p.Dependencies, p.DevDependencies, p.PeerDependencies} {
		if _, ok := deps[name]; ok {
			return true
		}
	}
	return false
}

// addDependency declares name in `dependencies` unless it is already
// declared anywhere. It reports whether the manifest changed.
func (p *packageJSON) addDependency(name, versionRange string) bool {
	if name == "" || p.hasDependency(name) {
		return false
	}
	if p.Dependencies == nil {
		p.Dependencies = make(map[string]string)
	}
	p.Dependencies[name] = versionRange
	return true
}

func (p *packageJSON) save() error {
	deps, err := json.Marshal(p.Dependencies)
	if err != nil {
		return err
	}
	p.raw["dependencies"] = deps

	data, err := json.MarshalIndent(p.raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, append(data, '\n'), 0o644)
}
