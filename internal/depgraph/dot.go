package depgraph

import (
	"fmt"
	"strings"
)

// ToDot renders the action graph in Graphviz DOT format, nodes and edges in
// insertion order. The SetupToolchain root is filled black.
func (g *DepGraph) ToDot() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("digraph {\n")
	for i, n := range g.nodes {
		attrs := "style=filled, shape=oval, fillcolor=gray, fontcolor=black"
		if i == 0 {
			attrs = "style=filled, shape=oval, fillcolor=black, fontcolor=white"
		}
		fmt.Fprintf(&sb, "    %d [ label=%q %s]\n", i, n.Label(), attrs)
	}
	for _, e := range g.edgeOrder {
		fmt.Fprintf(&sb, "    %d -> %d [ arrowhead=box, arrowtail=box]\n", e[0], e[1])
	}
	sb.WriteString("}\n")
	return sb.String()
}
