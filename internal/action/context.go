package action

import (
	"fmt"

	"github.com/specialistvlad/monogrid/internal/project"
	"github.com/specialistvlad/monogrid/internal/target"
)

// ProfileType selects a profiler for primary targets.
type ProfileType string

const (
	ProfileNone ProfileType = ""
	ProfileCPU  ProfileType = "cpu"
	ProfileHeap ProfileType = "heap"
)

// ParseProfileType validates a profile flag value.
func ParseProfileType(s string) (ProfileType, error) {
	switch ProfileType(s) {
	case ProfileNone, ProfileCPU, ProfileHeap:
		return ProfileType(s), nil
	}
	return ProfileNone, fmt.Errorf("unknown profile type %q (expected cpu or heap)", s)
}

// Context is shared read-only by every executor during one run.
type Context struct {
	PassthroughArgs []string
	PrimaryTargets  map[target.Target]struct{}
	Profile         ProfileType
	TouchedFiles    project.TouchedFilePaths
}

// NewContext builds a context whose primary targets are the given ones.
func NewContext(primary []target.Target, passthrough []string, profile ProfileType, touched project.TouchedFilePaths) *Context {
	set := make(map[target.Target]struct{}, len(primary))
	for _, t := range primary {
		set[t] = struct{}{}
	}
	if touched == nil {
		touched = project.TouchedFilePaths{}
	}
	return &Context{
		PassthroughArgs: passthrough,
		PrimaryTargets:  set,
		Profile:         profile,
		TouchedFiles:    touched,
	}
}

// IsPrimary reports whether t was requested directly rather than pulled in
// as a dependency.
func (c *Context) IsPrimary(t target.Target) bool {
	if c == nil {
		return false
	}
	_, ok := c.PrimaryTargets[t]
	return ok
}

// PassthroughFor returns the passthrough args that apply to t.
func (c *Context) PassthroughFor(t target.Target) []string {
	if !c.IsPrimary(t) {
		return nil
	}
	return c.PassthroughArgs
}

// ProfileFor returns the profile directive that applies to t.
func (c *Context) ProfileFor(t target.Target) ProfileType {
	if !c.IsPrimary(t) {
		return ProfileNone
	}
	return c.Profile
}
