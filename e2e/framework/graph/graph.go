// Package graph turns a finished run into a small knowledge graph of tests,
// steps, screens, tags and failure categories.
package graph

// Node represents a graph node.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Edge represents a graph edge.
type Edge struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Graph is a lightweight knowledge graph for test results.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// AddNode adds a node to the graph if it does not exist.
func (g *Graph) AddNode(node Node) {
	if g.index == nil {
		g.index = make(map[string]int, len(g.Nodes))
		for i, existing := range g.Nodes {
			g.index[existing.ID] = i
		}
	}
	if _, ok := g.index[node.ID]; ok {
		return
	}
	g.index[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// Node returns the node with id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgesFrom returns the edges of type kind leaving id. An empty kind
// matches every edge.
func (g *Graph) EdgesFrom(id, kind string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id && (kind == "" || e.Type == kind) {
			out = append(out, e)
		}
	}
	return out
}
