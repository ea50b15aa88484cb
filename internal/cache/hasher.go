package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// TargetHasher collects every component that determines a target's
// fingerprint. Any change to a component produces a different hash.
type TargetHasher struct {
	Target          string            `json:"target"`
	Command         string            `json:"command"`
	Args            []string          `json:"args"`
	Env             map[string]string `json:"env"`
	Outputs         []string          `json:"outputs"`
	Inputs          map[string]string `json:"inputs"`
	Deps            map[string]string `json:"deps"`
	PassthroughArgs []string          `json:"passthroughArgs"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// NewTargetHasher creates a hasher for the given target.
func NewTargetHasher(target string) *TargetHasher {
	return &TargetHasher{
		Target: target,
		Env:    map[string]string{},
		Inputs: map[string]string{},
		Deps:   map[string]string{},
	}
}

// HashInputFiles hashes each workspace-relative file and records it.
func (h *TargetHasher) HashInputFiles(workspaceRoot string, files []string) error {
	for _, f := range files {
		sum, err := hashFile(filepath.Join(workspaceRoot, filepath.FromSlash(f)))
		if err != nil {
			return fmt.Errorf("hashing input %s: %w", f, err)
		}
		h.Inputs[f] = sum
	}
	return nil
}

// AddDep records the fingerprint of an upstream target.
func (h *TargetHasher) AddDep(target, hash string) {
	h.Deps[target] = hash
}

// Hash returns the hex sha256 of the canonical JSON form. Map keys are
// serialized in sorted order, slices keep declaration order except outputs.
func (h *TargetHasher) Hash() (string, error) {
	canonical := *h
	canonical.Outputs = append([]string(nil), h.Outputs...)
	sort.Strings(canonical.Outputs)

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
