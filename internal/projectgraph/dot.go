package projectgraph

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/monogrid/internal/config"
)

const (
	rootNodeAttrs    = "style=filled, shape=oval, fillcolor=black, fontcolor=white"
	projectNodeAttrs = "style=filled, shape=oval, fillcolor=gray, fontcolor=black"
	rootEdgeAttrs    = "arrowhead=none"
	depEdgeAttrs     = "arrowhead=box, arrowtail=box"
)

// ToDot renders the loaded graph in Graphviz DOT format. Output is
// deterministic for a given graph: nodes and edges are written in
// insertion order.
func (g *Graph) ToDot() string {
	g.graphMu.RLock()
	defer g.graphMu.RUnlock()

	var sb strings.Builder
	sb.WriteString("digraph {\n")
	for i, p := range g.graph.nodes {
		attrs := projectNodeAttrs
		if p.ID == config.RootNodeID {
			attrs = rootNodeAttrs
		}
		fmt.Fprintf(&sb, "    %d [ label=%q %s]\n", i, p.ID, attrs)
	}
	for _, e := range g.graph.edges {
		attrs := depEdgeAttrs
		if e.from == rootIndex {
			attrs = rootEdgeAttrs
		}
		fmt.Fprintf(&sb, "    %d -> %d [ %s]\n", e.from, e.to, attrs)
	}
	sb.WriteString("}\n")
	return sb.String()
}
