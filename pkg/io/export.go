package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/graphbridge/pkg/ast"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
)

// Graph is the exchange form of one graph.
type Graph struct {
	ID    string `json:"graph"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one node in execution order.
type Node struct {
	ID         ast.ID           `json:"id"`
	Kind       string           `json:"kind"`
	Name       string           `json:"name,omitempty"`
	Code       string           `json:"code"`
	Expression string           `json:"expression"`
	Position   *module.Position `json:"position,omitempty"`
}

// Edge is a dataflow edge between two nodes.
type Edge struct {
	From ast.ID `json:"from"`
	To   ast.ID `json:"to"`
	Name string `json:"name"`
}

// FromNodes builds the exchange form of a graph's nodes. Positions are
// taken from meta.
func FromNodes(id graph.ID, nodes []node.Info, meta module.Metadata) Graph {
	out := Graph{
		ID:    id.String(),
		Nodes: make([]Node, len(nodes)),
		Edges: []Edge{},
	}
	for i, n := range nodes {
		nd := Node{
			ID:         n.ID(),
			Kind:       n.Kind.String(),
			Name:       n.Name(),
			Code:       n.Line.Repr(),
			Expression: n.Expression().Repr(),
		}
		if m, ok := meta.Node(n.ID()); ok && m.Position != nil {
			pos := *m.Position
			nd.Position = &pos
		}
		out.Nodes[i] = nd
	}
	for _, e := range graph.Dataflow(nodes) {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Name: e.Name})
	}
	return out
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode")
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
