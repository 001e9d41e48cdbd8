package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
)

// ReadJSON decodes a graph document from r.
//
// ReadJSON returns an INVALID_FORMAT error if:
//   - The JSON is malformed
//   - A node has no code, or a nil or duplicate ID
//   - An edge references an unknown node ID
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}

	ids := make(map[ast.ID]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		switch {
		case n.ID == (ast.ID{}):
			return Graph{}, errs.New(errs.ErrCodeInvalidFormat, "node %d: missing id", i)
		case ids[n.ID]:
			return Graph{}, errs.New(errs.ErrCodeInvalidFormat, "node %d: duplicate id %s", i, n.ID)
		case n.Code == "":
			return Graph{}, errs.New(errs.ErrCodeInvalidFormat, "node %s: missing code", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.From] || !ids[e.To] {
			return Graph{}, errs.New(errs.ErrCodeInvalidFormat, "edge %s->%s: unknown node", e.From, e.To)
		}
	}
	return g, nil
}

// ImportJSON reads a graph document from the file at path.
func ImportJSON(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
		}
		return Graph{}, errs.Wrap(errs.ErrCodeStorage, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// NewNodeInfo converts the node into a request that appends it to a graph
// with its identity and position.
func (n Node) NewNodeInfo() controller.NewNodeInfo {
	id := n.ID
	info := controller.NewNodeInfo{
		Expression:   n.Code,
		ID:           &id,
		LocationHint: graph.End(),
	}
	if n.Position != nil {
		pos := *n.Position
		info.Position = &pos
	}
	return info
}
