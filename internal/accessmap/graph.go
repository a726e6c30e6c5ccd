// Package accessmap builds the ring-structured access graph of a company's
// investor networks.
package accessmap

import (
	"github.com/rotisserie/eris"

	"github.com/etomlinson-dev/KYI/internal/model"
)

// NodeType identifies what a node represents.
type NodeType string

// Node types.
const (
	NodeCompany  NodeType = "company"
	NodeInvestor NodeType = "investor"
	NodePerson   NodeType = "person"
	NodeOrg      NodeType = "org"
)

// Rings.
const (
	RingCompany   = 0
	RingInvestors = 1
	RingNetwork   = 2
)

// EdgeType identifies an edge kind.
type EdgeType string

// Edge types.
const (
	EdgeKnows   EdgeType = "knows"    // investor -> person
	EdgeWorksAt EdgeType = "works_at" // person -> org
)

// Node is a vertex of the access graph. Count is the occurrence used to
// weight edges into the node: distinct investors for a person, distinct
// people for an org.
type Node struct {
	Key   string            `json:"key"`
	Type  NodeType          `json:"type"`
	Label string            `json:"label"`
	Ring  int               `json:"ring"`
	Count int               `json:"count,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Edge connects two nodes by key.
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight"`
}

// Metrics counts the graph's contents.
type Metrics struct {
	Nodes     int `json:"node_count"`
	Edges     int `json:"edge_count"`
	Investors int `json:"investor_count"`
	People    int `json:"person_count"`
	Orgs      int `json:"org_count"`
}

// Graph is an index-based access graph. Nodes keep insertion order.
type Graph struct {
	CompanyID string `json:"company_id"`
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`

	// Report is set by Build. Graphs loaded from a store leave it zero.
	Report model.IngestReport `json:"report"`

	index map[string]int
}

// NewGraph returns an empty graph for companyID.
func NewGraph(companyID string) *Graph {
	return &Graph{
		CompanyID: companyID,
		Nodes:     []Node{},
		Edges:     []Edge{},
		index:     make(map[string]int),
	}
}

// FromParts rebuilds a graph from stored nodes and edges. Every edge must
// reference known nodes.
func FromParts(companyID string, nodes []Node, edges []Edge) (*Graph, error) {
	g := NewGraph(companyID)
	for _, n := range nodes {
		if _, ok := g.index[n.Key]; ok {
			return nil, eris.Errorf("accessmap: duplicate node %q", n.Key)
		}
		g.addNode(n)
	}
	for _, e := range edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return nil, eris.Errorf("accessmap: edge %s -> %s references unknown node", e.From, e.To)
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

func (g *Graph) addNode(n Node) int {
	if g.index == nil {
		g.reindex()
	}
	if i, ok := g.index[n.Key]; ok {
		return i
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.Key] = len(g.Nodes) - 1
	return len(g.Nodes) - 1
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.Key] = i
	}
}

// Has reports whether key is a node of g.
func (g *Graph) Has(key string) bool {
	_, ok := g.Node(key)
	return ok
}

// Node looks up a node by key.
func (g *Graph) Node(key string) (Node, bool) {
	if g.index == nil {
		g.reindex()
	}
	i, ok := g.index[key]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Metrics returns node and edge counts by type.
func (g *Graph) Metrics() Metrics {
	m := Metrics{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, n := range g.Nodes {
		switch n.Type {
		case NodeInvestor:
			m.Investors++
		case NodePerson:
			m.People++
		case NodeOrg:
			m.Orgs++
		}
	}
	return m
}

// Neighborhood is the node-centered view of the graph: a center and the
// nodes one edge away in either direction.
type Neighborhood struct {
	Center    Node   `json:"center"`
	Neighbors []Node `json:"neighbors"`
	Edges     []Edge `json:"edges"`
}

// Neighborhood returns the view around key. The company node has no edges;
// its neighbors are the investors.
func (g *Graph) Neighborhood(key string) (Neighborhood, error) {
	center, ok := g.Node(key)
	if !ok {
		return Neighborhood{}, eris.Errorf("accessmap: unknown node %q", key)
	}

	nb := Neighborhood{Center: center, Neighbors: []Node{}, Edges: []Edge{}}
	if center.Type == NodeCompany {
		for _, n := range g.Nodes {
			if n.Type == NodeInvestor {
				nb.Neighbors = append(nb.Neighbors, n)
			}
		}
		return nb, nil
	}

	seen := map[string]bool{key: true}
	for _, e := range g.Edges {
		var other string
		switch key {
		case e.From:
			other = e.To
		case e.To:
			other = e.From
		default:
			continue
		}
		nb.Edges = append(nb.Edges, e)
		if !seen[other] {
			seen[other] = true
			n, _ := g.Node(other)
			nb.Neighbors = append(nb.Neighbors, n)
		}
	}
	return nb, nil
}

// CompanyKey returns the node key of a company.
func CompanyKey(id string) string { return "company:" + id }

// InvestorKey returns the node key of an investor.
func InvestorKey(id string) string { return "investor:" + id }

// PersonKey returns the node key of a person identity key.
func PersonKey(key string) string { return "person:" + key }

// OrgKey returns the node key of an org identity key.
func OrgKey(key string) string { return "org:" + key }
