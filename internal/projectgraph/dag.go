package projectgraph

import "github.com/specialistvlad/monogrid/internal/project"

type nodeIndex int

const rootIndex nodeIndex = 0

type edge struct {
	from, to nodeIndex
}

// dag is an adjacency list graph with insertion ordered nodes and edges.
// It is not safe for concurrent use; Graph guards it.
type dag struct {
	nodes    []*project.Project
	edges    []edge
	outgoing map[nodeIndex][]nodeIndex
	incoming map[nodeIndex][]nodeIndex
}

func newDAG() *dag {
	return &dag{
		outgoing: make(map[nodeIndex][]nodeIndex),
		incoming: make(map[nodeIndex][]nodeIndex),
	}
}

func (g *dag) addNode(p *project.Project) nodeIndex {
	g.nodes = append(g.nodes, p)
	return nodeIndex(len(g.nodes) - 1)
}

func (g *dag) addEdge(from, to nodeIndex) {
	g.edges = append(g.edges, edge{from: from, to: to})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
}

func (g *dag) node(i nodeIndex) *project.Project {
	return g.nodes[i]
}
