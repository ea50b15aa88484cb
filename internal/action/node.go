package action

import (
	"fmt"

	"github.com/specialistvlad/monogrid/internal/target"
)

// NodeKind distinguishes the kinds of work in the action graph.
type NodeKind int

const (
	KindSetupToolchain NodeKind = iota
	KindInstallDeps
	KindSyncProject
	KindRunTarget
)

func (k NodeKind) String() string {
	switch k {
	case KindSetupToolchain:
		return "SetupToolchain"
	case KindInstallDeps:
		return "InstallDeps"
	case KindSyncProject:
		return "SyncProject"
	case KindRunTarget:
		return "RunTarget"
	}
	return "Unknown"
}

// Node is the identity of one action graph vertex. It is comparable and is
// used as a map key for idempotent insertion.
type Node struct {
	Kind      NodeKind
	ProjectID string        // set for KindSyncProject
	Target    target.Target // set for KindRunTarget
}

// SetupToolchainNode is the single workspace level root action.
func SetupToolchainNode() Node { return Node{Kind: KindSetupToolchain} }

// InstallDepsNode installs workspace dependencies.
func InstallDepsNode() Node { return Node{Kind: KindInstallDeps} }

// SyncProjectNode syncs one project's manifests.
func SyncProjectNode(projectID string) Node {
	return Node{Kind: KindSyncProject, ProjectID: projectID}
}

// RunTargetNode runs one target.
func RunTargetNode(t target.Target) Node {
	return Node{Kind: KindRunTarget, Target: t}
}

// Label renders the node for logs, reports and DOT output.
func (n Node) Label() string {
	switch n.Kind {
	case KindSyncProject:
		return fmt.Sprintf("SyncProject(%s)", n.ProjectID)
	case KindRunTarget:
		return fmt.Sprintf("RunTarget(%s)", n.Target)
	}
	return n.Kind.String()
}
