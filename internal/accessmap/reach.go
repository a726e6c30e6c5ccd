package accessmap

import (
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// InvestorReach summarizes what one investor can reach through the graph.
type InvestorReach struct {
	InvestorID string  `json:"investor_id"`
	Label      string  `json:"label"`
	Direct     int     `json:"direct_people"`
	Exclusive  int     `json:"exclusive_people"` // known by no other investor
	Orgs       int     `json:"orgs"`             // two hops away
	Strength   float64 `json:"strength"`         // sum of direct edge weights
}

// Reach computes per-investor reach, in graph node order.
func Reach(g *Graph) []InvestorReach {
	dg := directed(g)

	out := []InvestorReach{}
	for i, n := range g.Nodes {
		if n.Type != NodeInvestor {
			continue
		}
		from := int64(i)
		r := InvestorReach{InvestorID: strings.TrimPrefix(n.Key, "investor:"), Label: n.Label}

		bf := traverse.BreadthFirst{
			Visit: func(v graph.Node) {
				switch g.Nodes[v.ID()].Type {
				case NodePerson:
					r.Direct++
					if dg.To(v.ID()).Len() == 1 {
						r.Exclusive++
					}
					if w, ok := dg.Weight(from, v.ID()); ok {
						r.Strength += w
					}
				case NodeOrg:
					r.Orgs++
				}
			},
		}
		// Every depth-2 node has been visited once the first one is dequeued.
		bf.Walk(dg, dg.Node(from), func(_ graph.Node, d int) bool { return d >= 2 })

		out = append(out, r)
	}
	return out
}

// directed converts g into a gonum graph whose node IDs are indexes into
// g.Nodes.
func directed(g *Graph) *simple.WeightedDirectedGraph {
	dg := simple.NewWeightedDirectedGraph(0, 0)
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	if g.index == nil {
		g.reindex()
	}
	for _, e := range g.Edges {
		f, okF := g.index[e.From]
		t, okT := g.index[e.To]
		if !okF || !okT || f == t {
			continue
		}
		dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(int64(f)), simple.Node(int64(t)), e.Weight))
	}
	return dg
}
