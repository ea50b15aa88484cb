package actions

import (
	"fmt"
	"os"
	"path"

	"github.com/goccy/go-json"
)

const tsconfigFileName = "tsconfig.json"

// tsconfigJSON is a tsconfig.json file. Only `references` is managed; the
// rest of the document is kept verbatim in raw.
type tsconfigJSON struct {
	path string
	raw  map[string]json.RawMessage

	references []json.RawMessage
	refPaths   map[string]struct{}
}

// readTsconfigJSON loads a tsconfig.json. A missing file yields found=false.
func readTsconfigJSON(file string) (cfg *tsconfigJSON, found bool, err error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	cfg = &tsconfigJSON{path: file, refPaths: make(map[string]struct{})}
	if err := json.Unmarshal(data, &cfg.raw); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", file, err)
	}
	if raw, ok := cfg.raw["references"]; ok {
		if err := json.Unmarshal(raw, &cfg.references); err != nil {
			return nil, false, fmt.Errorf("parsing \"references\" in %s: %w", file, err)
		}
	}
	for _, ref := range cfg.references {
		var r struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(ref, &r); err != nil {
			return nil, false, fmt.Errorf("parsing reference in %s: %w", file, err)
		}
		cfg.refPaths[path.Clean(r.Path)] = struct{}{}
	}
	return cfg, true, nil
}

// addReference appends a project reference unless one with the same
// cleaned path exists. It reports whether the config changed.
func (c *tsconfigJSON) addReference(refPath string) bool {
	refPath = path.Clean(refPath)
	if refPath == "." {
		return false
	}
	if _, ok := c.refPaths[refPath]; ok {
		return false
	}
	ref, err := json.Marshal(struct {
		Path string `json:"path"`
	}{refPath})
	if err != nil {
		return false
	}
	c.references = append(c.references, ref)
	c.refPaths[refPath] = struct{}{}
	return true
}

func (c *tsconfigJSON) save() error {
	refs, err := json.Marshal(c.references)
	if err != nil {
		return err
	}
	c.raw["references"] = refs

	data, err := json.MarshalIndent(c.raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, append(data, '\n'), 0o644)
}
