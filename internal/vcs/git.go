package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/specialistvlad/monogrid/internal/ctxlog"
)

// Git shells out to the git binary.
type Git struct {
	// Root is the directory git runs in.
	Root string
	// DefaultBranch is the base used when none is given.
	DefaultBranch string
}

var _ Provider = (*Git)(nil)

// TouchedFiles lists uncommitted changes when opts.Local is set, otherwise
// the files changed between the merge base of Base and Head.
func (g *Git) TouchedFiles(ctx context.Context, opts TouchedOptions) ([]string, error) {
	if opts.Local {
		out, err := g.run(ctx, "status", "--porcelain", "--untracked-files=all")
		if err != nil {
			return nil, err
		}
		return parsePorcelain(out), nil
	}

	base := opts.Base
	if base == "" {
		base = g.DefaultBranch
	}
	if base == "" {
		base = "main"
	}
	head := opts.Head
	if head == "" {
		head = "HEAD"
	}

	out, err := g.run(ctx, "diff", "--name-only", base+"..."+head)
	if err != nil {
		return nil, err
	}
	return parseNameList(out), nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	ctxlog.FromContext(ctx).Debug("Running git", "args", args, "dir", g.Root)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Root
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func parseNameList(out string) []string {
	set := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[line] = struct{}{}
		}
	}
	return sortedSet(set)
}

// parsePorcelain reads `git status --porcelain` output. Renames report both
// the old and the new path.
func parsePorcelain(out string) []string {
	set := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		if from, to, ok := strings.Cut(path, " -> "); ok {
			set[unquote(from)] = struct{}{}
			path = to
		}
		set[unquote(path)] = struct{}{}
	}
	return sortedSet(set)
}

func unquote(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		return path[1 : len(path)-1]
	}
	return path
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
