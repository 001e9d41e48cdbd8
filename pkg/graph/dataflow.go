package graph

import (
	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/node"
)

// Edge is a data dependency: node To reads the name bound by node From.
type Edge struct {
	From ast.ID
	To   ast.ID
	Name string
}

// Dataflow returns the edges between nodes, in node order. A reference
// resolves to the closest earlier binding of the name; references to names
// bound outside the nodes produce no edge.
func Dataflow(nodes []node.Info) []Edge {
	var edges []Edge
	bound := make(map[string]ast.ID)

	for _, n := range nodes {
		seen := make(map[string]bool)
		ast.Walk(n.Expression(), func(a *ast.Ast) bool {
			if a.Kind != ast.KindVar || seen[a.Text] {
				return true
			}
			if from, ok := bound[a.Text]; ok {
				seen[a.Text] = true
				edges = append(edges, Edge{From: from, To: n.ID(), Name: a.Text})
			}
			return true
		})
		if name := n.Name(); name != "" {
			bound[name] = n.ID()
		}
	}
	return edges
}
